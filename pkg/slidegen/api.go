package slidegen

// ProgressFunc receives coarse progress callbacks during a generation run:
// (current, total, message). Advisory only; current is not guaranteed to be
// monotonic or to reach total on failure.
type ProgressFunc func(current, total int, message string)

// Generator drives report generation. Use NewGenerator to create one.
type Generator struct {
	config     *Config
	fields     FieldMap
	dateColumn string
	policy     RolePolicy
	progress   ProgressFunc
	logger     *Logger
}

// GeneratorOption represents a configuration option for the generator.
type GeneratorOption func(*Generator)

// WithConfig returns an option that sets the generator configuration.
func WithConfig(config *Config) GeneratorOption {
	return func(g *Generator) {
		g.config = config
	}
}

// WithFieldMap returns an option that replaces the token to column mapping
// used on individual slides.
func WithFieldMap(fields FieldMap) GeneratorOption {
	return func(g *Generator) {
		g.fields = fields
	}
}

// WithDateColumn returns an option that sets the data column scanned for the
// reporting date range.
func WithDateColumn(column string) GeneratorOption {
	return func(g *Generator) {
		g.dateColumn = column
	}
}

// WithRolePolicy returns an option that replaces the slide classification
// policy.
func WithRolePolicy(policy RolePolicy) GeneratorOption {
	return func(g *Generator) {
		g.policy = policy
	}
}

// WithProgress returns an option that registers a progress callback.
func WithProgress(progress ProgressFunc) GeneratorOption {
	return func(g *Generator) {
		g.progress = progress
	}
}

// WithLogger returns an option that sets the generator's logger.
func WithLogger(logger *Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator with the global configuration, the default
// field map and the default role policy, then applies the given options.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		config:     GetGlobalConfig(),
		fields:     DefaultFieldMap(),
		dateColumn: DefaultDateColumn,
		policy:     DefaultRolePolicy,
		logger:     GetLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result summarizes a finished generation run.
type Result struct {
	Records    int
	Slides     int
	OutputPath string
}

// GenerateReport runs a whole report generation with a default generator.
func GenerateReport(templatePath, dataPath, outputPath string) (*Result, error) {
	return NewGenerator().GenerateReport(templatePath, dataPath, outputPath)
}
