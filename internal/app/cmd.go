package app

// Command はバイナリの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーとして起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker は日次アーカイブ生成とセッション掃除のワーカーとして起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はマイグレーションを適用して終了することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中のサーバーに対するヘルスチェックを示す。
	// シェルを持たないコンテナイメージのHEALTHCHECKから利用する。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = map[string]Command{
	"serve":       CommandServe,
	"worker":      CommandWorker,
	"migrate":     CommandMigrate,
	"healthcheck": CommandHealthcheck,
}

// ParseCommand は先頭のコマンドライン引数からサブコマンドを解析する。
// 引数がない場合、または未知のコマンドの場合はCommandServeにフォールバックする。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := knownCommands[args[0]]; ok {
		return cmd
	}
	return CommandServe
}
