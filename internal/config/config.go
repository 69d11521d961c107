package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"sync"
)

var (
	cfg     *APIConfig
	loadErr error
	once    sync.Once
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName       xml.Name            `xml:"API"`
	RequestDump   bool                `xml:"REQUEST_DUMP,attr"`
	Context       ContextConfig       `xml:"CONTEXT"`
	DB            DBConfig            `xml:"DB"`
	Certification CertificationConfig `xml:"CERTIFICATION"`
	Plagiarism    PlagiarismConfig    `xml:"PLAGIARISM"`
	RateLimit     RateLimitConfig     `xml:"RATE_LIMIT"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port     int    `xml:"PORT"`
	Host     string `xml:"HOST"`
	TimeZone string `xml:"TIME_ZONE"`
	SeedData bool   `xml:"SEED_DATA"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	Name       string       `xml:"NAME"`
	SSLMode    string       `xml:"SSL_MODE"`
	Username   string       `xml:"USERNAME"`
	Password   DBPassword   `xml:"PASSWORD"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBPassword holds password details. TYPE="env" resolves the value
// as an environment variable name instead of a literal.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

func (p DBPassword) Resolve() string {
	if p.Type == "env" {
		return os.Getenv(p.Value)
	}
	return p.Value
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

// CertificationConfig holds issuance tuning knobs.
type CertificationConfig struct {
	InsertRetries int `xml:"INSERT_RETRIES"`
	CodeRetries   int `xml:"CODE_RETRIES"`
}

// PlagiarismConfig holds scoring thresholds.
type PlagiarismConfig struct {
	SimilarityFloor int `xml:"SIMILARITY_FLOOR"`
	MinTokenLength  int `xml:"MIN_TOKEN_LENGTH"`
	MinSnippetRun   int `xml:"MIN_SNIPPET_RUN"`
}

// RateLimitConfig holds per-client limits on the write endpoints.
type RateLimitConfig struct {
	RequestsPerSecond float64 `xml:"REQUESTS_PER_SECOND"`
	Burst             int     `xml:"BURST"`
}

// LoadConfig loads and parses the XML configuration from the given
// file, once per process. Later calls return the first call's result,
// including its error.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		cfg, loadErr = parseConfig(xmlPath)
	})
	return cfg, loadErr
}

func parseConfig(xmlPath string) (*APIConfig, error) {
	data, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var newCfg APIConfig
	if err := xml.Unmarshal(data, &newCfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	newCfg.applyDefaults()
	return &newCfg, nil
}

func (c *APIConfig) applyDefaults() {
	if c.Certification.InsertRetries <= 0 {
		c.Certification.InsertRetries = 3
	}
	if c.Certification.CodeRetries <= 0 {
		c.Certification.CodeRetries = 5
	}
	if c.Plagiarism.SimilarityFloor <= 0 {
		c.Plagiarism.SimilarityFloor = 20
	}
	if c.Plagiarism.MinTokenLength <= 0 {
		c.Plagiarism.MinTokenLength = 4
	}
	if c.Plagiarism.MinSnippetRun <= 0 {
		c.Plagiarism.MinSnippetRun = 5
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
}
