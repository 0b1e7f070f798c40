package domain

import "strings"

// Suggest は求人タイトルと説明文から最も適合するドメインIDを推定する。
// タイトルと説明文を連結して小文字化し、各activeドメインについて
// テキスト中に部分文字列として出現するキーワード数をスコアとする
// （同じキーワードが複数回出現しても1としか数えない）。
// 最大スコアのドメインIDを返し、最大スコアが0の場合は空文字を返す。
// 同点の場合はカタログ宣言順で先に最大スコアへ到達したドメインが勝つ。
//
// これは意図的に単純なヒューリスティックであり、分類器ではない。
// トークン化を行わない部分文字列マッチのため、"ai" のようなキーワードは
// 無関係な単語の内部にもマッチする。これは既知の挙動であり修正しない。
func (r *Registry) Suggest(title, description string) string {
	text := strings.ToLower(title + " " + description)

	bestID := ""
	bestScore := 0
	for _, d := range r.ListActive() {
		score := 0
		for _, kw := range d.Keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestID = d.ID
		}
	}

	return bestID
}
