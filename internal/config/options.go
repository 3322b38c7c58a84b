package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/manthysbr/scribe/internal/core/domain"
)

// Options is the gateway configuration. Every field can be set by flag or SCRIBE_* env var.
type Options struct {
	Addr string `long:"addr" env:"SCRIBE_ADDR" default:":8080" description:"HTTP listen address"`

	StorageURL     string `long:"storage-url" env:"SCRIBE_STORAGE_URL" default:"mem://localhost/transcribe" description:"base URL uploads are written under (mem://, file://, s3://)"`
	MaxUploadBytes int64  `long:"max-upload-bytes" env:"SCRIBE_MAX_UPLOAD_BYTES" default:"104857600" description:"largest accepted upload"`

	WorkflowEndpoint string        `long:"workflow-endpoint" env:"SCRIBE_WORKFLOW_ENDPOINT" default:"http://localhost:4566/beta/execution" description:"HTTP endpoint that starts state machine executions"`
	StateMachineArn  string        `long:"state-machine-arn" env:"SCRIBE_STATE_MACHINE_ARN" default:"arn:aws:states:us-east-1:000000000000:stateMachine:transcribe" description:"state machine to run for each job"`
	ExecutionPrefix  string        `long:"execution-prefix" env:"SCRIBE_EXECUTION_PREFIX" default:"Execution-" description:"prefix joining job ids to execution names"`
	WorkflowTimeout  time.Duration `long:"workflow-timeout" env:"SCRIBE_WORKFLOW_TIMEOUT" default:"30s" description:"timeout for one submission"`
	MaxInFlight      int64         `long:"max-in-flight" env:"SCRIBE_MAX_IN_FLIGHT" default:"10" description:"concurrent submissions to the workflow endpoint"`
	DispatchRate     float64       `long:"dispatch-rate" env:"SCRIBE_DISPATCH_RATE" default:"0" description:"submissions per second, 0 for unlimited"`

	JobTTL       time.Duration `long:"job-ttl" env:"SCRIBE_JOB_TTL" default:"0s" description:"evict completed jobs this long after their callback, 0 keeps them for the process lifetime; pending jobs are never evicted"`
	ReapInterval time.Duration `long:"reap-interval" env:"SCRIBE_REAP_INTERVAL" default:"1m" description:"how often idle jobs are evicted"`

	JournalPath string   `long:"journal-path" env:"SCRIBE_JOURNAL_PATH" description:"DuckDB file for the traffic journal, empty disables it"`
	CORSOrigins []string `long:"cors-origin" env:"SCRIBE_CORS_ORIGINS" env-delim:"," default:"http://localhost:5173" description:"allowed CORS origins"`
	LogLevel    string   `long:"log-level" env:"SCRIBE_LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"log level"`
}

// Load parses args (without the program name) and the environment, then validates.
func Load(args []string) (*Options, error) {
	opts := &Options{}
	if _, err := flags.ParseArgs(opts, args); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) Validate() error {
	if strings.TrimSpace(o.StorageURL) == "" {
		return fmt.Errorf("storage-url is required")
	}
	if !strings.Contains(o.StorageURL, "://") {
		return fmt.Errorf("storage-url %q must include a scheme", o.StorageURL)
	}
	endpoint, err := url.Parse(o.WorkflowEndpoint)
	if err != nil || endpoint.Host == "" || (endpoint.Scheme != "http" && endpoint.Scheme != "https") {
		return fmt.Errorf("workflow-endpoint %q must be an absolute http(s) URL", o.WorkflowEndpoint)
	}
	if strings.TrimSpace(o.StateMachineArn) == "" {
		return fmt.Errorf("state-machine-arn is required")
	}
	if o.ExecutionPrefix == "" {
		o.ExecutionPrefix = domain.DefaultExecutionPrefix
	}
	if o.MaxInFlight <= 0 {
		return fmt.Errorf("max-in-flight must be positive, got %d", o.MaxInFlight)
	}
	if o.DispatchRate < 0 {
		return fmt.Errorf("dispatch-rate must not be negative")
	}
	if o.JobTTL < 0 {
		return fmt.Errorf("job-ttl must not be negative")
	}
	if o.MaxUploadBytes <= 0 {
		return fmt.Errorf("max-upload-bytes must be positive")
	}
	return nil
}

// SlogLevel maps LogLevel onto slog.
func (o *Options) SlogLevel() slog.Level {
	switch strings.ToLower(o.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
