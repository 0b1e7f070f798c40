// Package domain は求人ドメインの静的カタログとドメイン推定ロジックを提供する。
package domain

// Domain は求人のカテゴリ分類を表す。
// カタログはプロセス起動時に固定され、実行時は読み取り専用。
type Domain struct {
	ID          string   // 一意なスラッグ
	DisplayName string   // 表示名
	Keywords    []string // マッチング用キーワード（小文字、宣言順）
	Active      bool
}

// Registry はドメインカタログへの読み取り専用アクセスを提供する。
// 並行読み取りに対して安全。
type Registry struct {
	domains []Domain
	byID    map[string]*Domain
}

// NewRegistry は組み込みカタログからRegistryを生成する。
func NewRegistry() *Registry {
	return newRegistryWith(builtinDomains)
}

func newRegistryWith(domains []Domain) *Registry {
	r := &Registry{
		domains: domains,
		byID:    make(map[string]*Domain, len(domains)),
	}
	for i := range r.domains {
		r.byID[r.domains[i].ID] = &r.domains[i]
	}
	return r
}

// ListActive はactiveなドメインを宣言順のまま返す。
func (r *Registry) ListActive() []Domain {
	active := make([]Domain, 0, len(r.domains))
	for _, d := range r.domains {
		if d.Active {
			active = append(active, d)
		}
	}
	return active
}

// Get は指定IDのドメインを返す。見つからない場合はnilを返す。
// active=falseのドメインも検索対象に含む。
func (r *Registry) Get(id string) *Domain {
	return r.byID[id]
}

// builtinDomains は組み込みのドメインカタログ。
// ListActiveの返却順とSuggestのタイブレーク順はこの宣言順に従う。
var builtinDomains = []Domain{
	// 技術系ドメイン
	{
		ID:          "software_development",
		DisplayName: "Software Development",
		Keywords:    []string{"developer", "programming", "coding", "software", "full stack", "frontend", "backend"},
		Active:      true,
	},
	{
		ID:          "devops",
		DisplayName: "DevOps & Infrastructure",
		Keywords:    []string{"devops", "infrastructure", "deployment", "kubernetes", "docker", "aws", "cloud"},
		Active:      true,
	},
	{
		ID:          "cybersecurity",
		DisplayName: "Cybersecurity",
		Keywords:    []string{"security", "cyber", "infosec", "penetration", "compliance", "firewall", "encryption"},
		Active:      true,
	},
	{
		ID:          "data_science",
		DisplayName: "Data Science",
		Keywords:    []string{"data scientist", "machine learning", "ai", "deep learning", "python", "modeling"},
		Active:      true,
	},
	{
		ID:          "data_analytics",
		DisplayName: "Data Analytics",
		Keywords:    []string{"data analyst", "analytics", "sql", "excel", "reporting", "power bi", "tableau"},
		Active:      true,
	},
	{
		ID:          "mobile_development",
		DisplayName: "Mobile Development",
		Keywords:    []string{"mobile", "ios", "android", "react native", "flutter", "swift", "kotlin"},
		Active:      true,
	},
	{
		ID:          "web_development",
		DisplayName: "Web Development",
		Keywords:    []string{"web", "html", "css", "javascript", "react", "angular", "vue"},
		Active:      true,
	},
	{
		ID:          "cloud_engineering",
		DisplayName: "Cloud Engineering",
		Keywords:    []string{"cloud", "aws", "azure", "gcp", "serverless", "microservices"},
		Active:      true,
	},
	{
		ID:          "database_administration",
		DisplayName: "Database Administration",
		Keywords:    []string{"database", "dba", "mysql", "postgresql", "mongodb", "oracle"},
		Active:      true,
	},
	{
		ID:          "qa_testing",
		DisplayName: "QA & Testing",
		Keywords:    []string{"testing", "qa", "quality assurance", "automation", "selenium", "test"},
		Active:      true,
	},
	{
		ID:          "ui_ux_design",
		DisplayName: "UI/UX Design",
		Keywords:    []string{"design", "ui", "ux", "user experience", "figma", "adobe", "prototype"},
		Active:      true,
	},
	{
		ID:          "technical_writing",
		DisplayName: "Technical Writing",
		Keywords:    []string{"technical writer", "documentation", "content", "api docs"},
		Active:      true,
	},
	{
		ID:          "network_engineering",
		DisplayName: "Network Engineering",
		Keywords:    []string{"network", "cisco", "routing", "switching", "firewall", "vpn"},
		Active:      true,
	},
	{
		ID:          "blockchain",
		DisplayName: "Blockchain & Cryptocurrency",
		Keywords:    []string{"blockchain", "crypto", "bitcoin", "ethereum", "solidity", "defi"},
		Active:      true,
	},
	{
		ID:          "game_development",
		DisplayName: "Game Development",
		Keywords:    []string{"game", "unity", "unreal", "gaming", "3d", "graphics"},
		Active:      true,
	},

	// 非技術系ドメイン
	{
		ID:          "engineering_manager",
		DisplayName: "Engineering Manager",
		Keywords:    []string{"engineering manager", "tech lead", "engineering leadership", "head of engineering", "director of engineering"},
		Active:      true,
	},
	{
		ID:          "product_management",
		DisplayName: "Product Management",
		Keywords:    []string{"product manager", "pm", "product owner", "roadmap", "strategy"},
		Active:      true,
	},
	{
		ID:          "project_management",
		DisplayName: "Project Management",
		Keywords:    []string{"project manager", "scrum", "agile", "pmp", "coordination"},
		Active:      true,
	},
	{
		ID:          "business_analyst",
		DisplayName: "Business Analysis",
		Keywords:    []string{"business analyst", "requirements", "process", "workflow"},
		Active:      true,
	},
	{
		ID:          "sales",
		DisplayName: "Sales & Business Development",
		Keywords:    []string{"sales", "business development", "account manager", "revenue"},
		Active:      true,
	},
	{
		ID:          "marketing",
		DisplayName: "Marketing & Growth",
		Keywords:    []string{"marketing", "growth", "seo", "social media", "campaigns"},
		Active:      true,
	},
	{
		ID:          "human_resources",
		DisplayName: "Human Resources",
		Keywords:    []string{"hr", "human resources", "recruitment", "talent", "people"},
		Active:      true,
	},
	{
		ID:          "finance",
		DisplayName: "Finance & Accounting",
		Keywords:    []string{"finance", "accounting", "financial", "cfo", "budget"},
		Active:      true,
	},
	{
		ID:          "legal",
		DisplayName: "Legal & Compliance",
		Keywords:    []string{"legal", "lawyer", "compliance", "attorney", "contract"},
		Active:      true,
	},
	{
		ID:          "supplychain",
		DisplayName: "Operations & Supply Chain",
		Keywords:    []string{"operations", "supply chain", "logistics", "procurement"},
		Active:      true,
	},
	{
		ID:          "customer_success",
		DisplayName: "Customer Success & Support",
		Keywords:    []string{"customer success", "support", "customer service", "account management"},
		Active:      true,
	},
	{
		ID:          "content_creation",
		DisplayName: "Content & Creative",
		Keywords:    []string{"content", "creative", "copywriter", "social media", "brand"},
		Active:      true,
	},
	{
		ID:          "consulting",
		DisplayName: "Consulting & Strategy",
		Keywords:    []string{"consultant", "strategy", "advisory", "management consulting"},
		Active:      true,
	},
	{
		ID:          "healthcare",
		DisplayName: "Healthcare & Medical",
		Keywords:    []string{"healthcare", "medical", "nurse", "doctor", "clinical"},
		Active:      true,
	},
	{
		ID:          "education",
		DisplayName: "Education & Training",
		Keywords:    []string{"education", "teacher", "training", "instructor", "academic"},
		Active:      true,
	},
	{
		ID:          "research",
		DisplayName: "Research & Development",
		Keywords:    []string{"research", "r&d", "scientist", "lab", "innovation"},
		Active:      true,
	},
}
