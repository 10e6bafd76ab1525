// Package pipeline turns a research topic into four artifacts: retained
// papers, a literature summary, a fixed set of research gaps, and a drafted
// proposal. The stages are deterministic transformations; their behavior is
// defined by the literal keyword tables in this file.
package pipeline

// domainTriggers maps each domain tag to its lowercase trigger phrases.
// Kept as an ordered slice so tie-breaking is deterministic: the first
// domain reaching the winning count is picked.
var domainTriggers = []struct {
	Name     string
	Triggers []string
}{
	{"machine-learning", []string{"machine learning", "deep learning", "neural network", "reinforcement learning", "supervised learning", "transformer", "classification model"}},
	{"natural-language-processing", []string{"natural language", "nlp", "language model", "text mining", "sentiment analysis", "machine translation", "named entity"}},
	{"computer-vision", []string{"computer vision", "image recognition", "object detection", "image segmentation", "visual recognition", "image classification"}},
	{"robotics", []string{"robot", "robotics", "autonomous vehicle", "motion planning", "manipulation", "slam"}},
	{"cybersecurity", []string{"security", "cybersecurity", "encryption", "malware", "intrusion detection", "vulnerability", "privacy-preserving"}},
	{"quantum-computing", []string{"quantum computing", "quantum", "qubit", "quantum algorithm", "quantum error"}},
	{"bioinformatics", []string{"bioinformatics", "genomics", "protein structure", "gene expression", "dna sequencing", "drug discovery"}},
	{"data-science", []string{"data science", "big data", "data mining", "data analysis", "predictive analytics", "data pipeline"}},
	{"human-computer-interaction", []string{"human-computer interaction", "user interface", "usability", "user experience", "accessibility", "interaction design"}},
	{"software-engineering", []string{"software engineering", "software testing", "code review", "software architecture", "devops", "program analysis"}},
}

// methodologyTerms are appended to the raw topic to widen the query set.
var methodologyTerms = []string{"framework", "method", "approach", "survey", "review"}

// applicationContexts holds domain-specific query suffixes; domains without
// an entry fall back to genericContexts.
var applicationContexts = map[string][]string{
	"machine-learning":            {"applications", "real-world deployment", "interpretability"},
	"natural-language-processing": {"applications", "low-resource languages", "evaluation"},
	"computer-vision":             {"applications", "autonomous systems", "medical imaging"},
	"robotics":                    {"industrial applications", "human-robot collaboration"},
	"cybersecurity":               {"threat detection", "critical infrastructure"},
	"quantum-computing":           {"near-term devices", "error correction"},
	"bioinformatics":              {"clinical applications", "precision medicine"},
	"data-science":                {"decision support", "industry applications"},
	"human-computer-interaction":  {"assistive technology", "user studies"},
	"software-engineering":        {"industrial practice", "open source"},
}

var genericContexts = []string{"applications", "case study", "challenges"}

// Analyzer keyword tables. First-match ordering is significant: both the
// sentence scan order and the order within each table define the result.
var (
	problemKeywords     = []string{"problem", "challenge", "address", "propose", "develop"}
	methodologyKeywords = []string{"method", "approach", "algorithm", "model", "framework", "technique", "using", "based on"}
	dataTypeKeywords    = []string{"dataset", "benchmark", "corpus", "data", "real-world", "simulation", "synthetic", "image", "text", "time series"}
	resultKeywords      = []string{"result", "achieve", "improve", "outperform", "show", "demonstrate", "find", "observe"}
	limitationKeywords  = []string{"limitation", "challenge", "future", "remain", "not address", "extend", "scope"}
)

// Analyzer fallback strings.
const (
	fallbackProblem     = "Problem not clearly stated"
	fallbackMethodology = "Methodology not specified"
	fallbackDataType    = "Data type not specified"
	fallbackResults     = "Results not specified"
	fallbackLimitations = "Limitations not explicitly mentioned"
)
