package classify

import "regexp"

// Type identifies the structural category of a cataloged tool. The type
// determines which page sections get generated and which metric sources
// are worth querying.
type Type string

// The closed set of tool types.
const (
	TypeOpenSource     Type = "open_source"
	TypeMLModel        Type = "ml_model"
	TypeCommercialSaaS Type = "saas_commercial"
	TypeAPIService     Type = "api_service"
	TypeDeveloperTool  Type = "developer_tool"
	TypeGeneric        Type = "generic"
)

// String returns the string representation of a Type.
func (t Type) String() string {
	return string(t)
}

// signals is one row of the classification rule table. Rules are data:
// adding a type means adding a row, not touching the scoring logic.
type signals struct {
	// URLPatterns match against the tool URL; a single match contributes
	// the full URL weight.
	URLPatterns []*regexp.Regexp

	// DescriptionSignals are counted per occurrence in the description,
	// and also matched against the name at reduced weight.
	DescriptionSignals []string

	// TagSignals are matched against the tool's tags exactly.
	TagSignals []string

	// CategorySignals are matched against the tool's category exactly.
	CategorySignals []string

	// PricingSignals are counted per occurrence in the pricing text.
	PricingSignals []string

	// Sections are the recommended page sections for this type.
	Sections []string

	// Aggregators are the metric sources worth querying for this type.
	Aggregators []string
}

// defaultSections is used for the generic type and any unknown type.
var defaultSections = []string{"overview", "key_features", "pricing"}

// typeOrder fixes the evaluation order so score ties resolve the same way
// on every run.
var typeOrder = []Type{
	TypeOpenSource,
	TypeMLModel,
	TypeCommercialSaaS,
	TypeAPIService,
	TypeDeveloperTool,
}

// ruleTable maps each classifiable type to its signal lists.
// TypeGeneric has no row: it is the fallback, never scored directly.
var ruleTable = map[Type]signals{
	TypeOpenSource: {
		URLPatterns: compile(
			`github\.com/`,
			`gitlab\.com/`,
			`bitbucket\.org/`,
			`codeberg\.org/`,
			`sourceforge\.net/`,
		),
		DescriptionSignals: []string{
			"open source", "open-source", "opensource",
			"mit license", "apache license", "gpl", "bsd license",
			"self-host", "self host",
			"fork", "contribute", "community-driven",
		},
		TagSignals: []string{"open-source", "self-hosted", "foss", "libre"},
		Sections: []string{
			"overview", "repo_stats", "installation",
			"key_features", "community", "recent_news",
		},
		Aggregators: []string{"github", "pypi", "npm"},
	},
	TypeMLModel: {
		URLPatterns: compile(
			`huggingface\.co/`,
			`replicate\.com/`,
			`civitai\.com/`,
			`ollama\.com/`,
		),
		DescriptionSignals: []string{
			"model", "transformer", "llm", "large language model",
			"neural network", "fine-tun", "pretrain", "inference",
			"embedding", "diffusion", "stable diffusion",
			"checkpoint", "weights", "parameters",
			"billion parameter", "7b", "13b", "70b", "foundation model",
		},
		TagSignals: []string{
			"model", "llm", "transformer", "machine-learning",
			"deep-learning", "neural-network", "nlp", "computer-vision",
		},
		CategorySignals: []string{"language models", "image generation", "audio", "video"},
		Sections: []string{
			"overview", "model_card", "benchmarks", "usage_examples",
			"key_features", "pricing", "recent_news",
		},
		Aggregators: []string{"huggingface", "github"},
	},
	TypeCommercialSaaS: {
		// Generic TLDs (.com, .io, .ai) are deliberately not matched;
		// nearly every tool URL would hit them. Pricing and app paths
		// are the useful signals.
		URLPatterns: compile(
			`/pricing`,
			`/plans`,
			`/subscribe`,
			`/signup`,
			`/sign-up`,
			`/login`,
			`/app`,
			`app\.`,
			`dashboard`,
		),
		DescriptionSignals: []string{
			"subscription", "pricing", "enterprise", "pro plan",
			"business plan", "free tier", "pay per", "per month",
			"/month", "trial", "saas", "cloud-based", "hosted solution",
		},
		PricingSignals: []string{"free", "starter", "pro", "enterprise", "custom", "$"},
		Sections: []string{
			"overview", "pricing_tiers", "key_features",
			"use_cases", "alternatives", "recent_news",
		},
	},
	TypeAPIService: {
		URLPatterns: compile(
			`/api`,
			`/docs`,
			`developer\.`,
			`platform\.`,
		),
		DescriptionSignals: []string{
			"api", "endpoint", "sdk", "rest", "graphql", "webhook",
			"integration", "developer", "programmatic",
			"authentication", "rate limit",
		},
		TagSignals: []string{"api", "sdk", "developer-tools", "integration"},
		Sections: []string{
			"overview", "api_overview", "code_examples",
			"key_features", "pricing", "recent_news",
		},
		Aggregators: []string{"github", "pypi", "npm"},
	},
	TypeDeveloperTool: {
		DescriptionSignals: []string{
			"cli", "command line", "terminal", "ide", "editor",
			"plugin", "extension", "framework", "library",
			"toolkit", "dev tool", "developer tool",
		},
		TagSignals: []string{"cli", "developer-tools", "productivity", "framework"},
		Sections: []string{
			"overview", "installation", "key_features",
			"use_cases", "repo_stats", "recent_news",
		},
		Aggregators: []string{"github", "pypi", "npm"},
	},
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// SectionsForType returns the recommended page sections for a tool type.
func SectionsForType(t Type) []string {
	if rules, ok := ruleTable[t]; ok && len(rules.Sections) > 0 {
		return rules.Sections
	}
	return defaultSections
}

// AggregatorsForType returns the metric sources worth querying for a tool type.
func AggregatorsForType(t Type) []string {
	if rules, ok := ruleTable[t]; ok {
		return rules.Aggregators
	}
	return nil
}
