package jobspec

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// UserAgentType selects the request-header profile the crawl-execution
// service uses when fetching pages.
type UserAgentType string

const (
	UADesktop       UserAgentType = "desktop"
	UADesktopChrome UserAgentType = "desktop_chrome"
	UAMobile        UserAgentType = "mobile"
	UAMobileChrome  UserAgentType = "mobile_chrome"
)

// OutputType names the artifact the crawl-execution service produces.
type OutputType string

const (
	OutputSitemap OutputType = "sitemap"
	OutputHTML    OutputType = "html"
	OutputParsed  OutputType = "parsed"
)

type Filters struct {
	Crawl    []string `json:"crawl" validate:"required,min=1,dive,required"`
	Process  []string `json:"process" validate:"required,min=1,dive,required"`
	MaxDepth int      `json:"max_depth" validate:"gte=0"`
}

type ScrapeParams struct {
	UserAgentType UserAgentType `json:"user_agent_type" validate:"required"`
}

type Output struct {
	Type OutputType `json:"type" validate:"required"`
}

// Job is the crawl job payload handed to the external crawl-execution
// service. It is a plain value: built once, never mutated, no behavior of
// its own.
type Job struct {
	URL          string       `json:"url" validate:"required,http_url"`
	Filters      Filters      `json:"filters"`
	ScrapeParams ScrapeParams `json:"scrape_params"`
	Output       Output       `json:"output"`
}

// Builder assembles a Job and validates it on Build. The zero defaults
// mirror a follow-everything, depth-1 sitemap job.
type Builder struct {
	job      Job
	validate *validator.Validate
}

func NewBuilder(url string) *Builder {
	return &Builder{
		job: Job{
			URL: url,
			Filters: Filters{
				Crawl:    []string{".*"},
				Process:  []string{".*"},
				MaxDepth: 1,
			},
			ScrapeParams: ScrapeParams{UserAgentType: UADesktop},
			Output:       Output{Type: OutputSitemap},
		},
		validate: validator.New(),
	}
}

// CrawlPatterns sets which discovered links are followed.
func (b *Builder) CrawlPatterns(patterns ...string) *Builder {
	b.job.Filters.Crawl = patterns
	return b
}

// ProcessPatterns sets which fetched pages are extracted from.
func (b *Builder) ProcessPatterns(patterns ...string) *Builder {
	b.job.Filters.Process = patterns
	return b
}

func (b *Builder) MaxDepth(depth int) *Builder {
	b.job.Filters.MaxDepth = depth
	return b
}

func (b *Builder) UserAgent(ua UserAgentType) *Builder {
	b.job.ScrapeParams.UserAgentType = ua
	return b
}

func (b *Builder) OutputType(t OutputType) *Builder {
	b.job.Output.Type = t
	return b
}

func (b *Builder) Build() (Job, error) {
	if err := b.validate.Struct(b.job); err != nil {
		return Job{}, fmt.Errorf("validate crawl job: %w", err)
	}

	for _, p := range b.job.Filters.Crawl {
		if _, err := regexp.Compile(p); err != nil {
			return Job{}, fmt.Errorf("invalid crawl pattern %q: %w", p, err)
		}
	}
	for _, p := range b.job.Filters.Process {
		if _, err := regexp.Compile(p); err != nil {
			return Job{}, fmt.Errorf("invalid process pattern %q: %w", p, err)
		}
	}

	switch b.job.ScrapeParams.UserAgentType {
	case UADesktop, UADesktopChrome, UAMobile, UAMobileChrome:
	default:
		return Job{}, fmt.Errorf("unknown user_agent_type %q", b.job.ScrapeParams.UserAgentType)
	}

	switch b.job.Output.Type {
	case OutputSitemap, OutputHTML, OutputParsed:
	default:
		return Job{}, fmt.Errorf("unknown output type %q", b.job.Output.Type)
	}

	// Copy the pattern slices so later Builder reuse cannot alias into the
	// returned value.
	out := b.job
	out.Filters.Crawl = append([]string(nil), b.job.Filters.Crawl...)
	out.Filters.Process = append([]string(nil), b.job.Filters.Process...)
	return out, nil
}
