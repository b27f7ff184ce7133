package reduce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/tmin/internal"
	tt "github.com/gnolang/tmin/internal/types"
	"github.com/gnolang/tmin/internal/writer"
	"github.com/gnolang/tmin/scanner"
)

const DefaultConfigPath = ".tmin.yaml"

type ReduceEngine interface {
	Run(ctx context.Context, filePath string) (*tt.Report, error)
	RunSource(ctx context.Context, filename string, source []byte) (*tt.Report, error)
	Check(ctx context.Context, filePath string) (bool, error)
}

// Config represents the configuration file.
type Config struct {
	Name     string          `yaml:"name"`
	Language string          `yaml:"language,omitempty"`
	Jobs     int             `yaml:"jobs,omitempty"`
	Oracle   tt.OracleConfig `yaml:"oracle"`
	Cache    CacheConfig     `yaml:"cache"`
	Output   OutputConfig    `yaml:"output"`
}

type CacheConfig struct {
	// Dir enables the verdict cache. An empty Dir disables it.
	Dir    string        `yaml:"dir,omitempty"`
	MaxAge time.Duration `yaml:"max_age,omitempty"`
}

type OutputConfig struct {
	Suffix  string `yaml:"suffix,omitempty"`
	InPlace bool   `yaml:"in_place,omitempty"`
	Gofmt   bool   `yaml:"gofmt,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Name: "tmin",
		Jobs: 1,
		Output: OutputConfig{
			Suffix: writer.DefaultSuffix,
		},
	}
}

// LoadConfig reads the configuration at path. A missing file at the
// default path yields the default configuration.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	config, err := parseConfigurationFile(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
		return DefaultConfig(), nil
	}
	return config, err
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error decoding %s: %w", configurationPath, err)
	}

	return config, nil
}

// New creates the engine described by config. The returned cache is nil
// when caching is off; callers save it when done.
func New(config Config, logger *zap.Logger) (*internal.Engine, *internal.Cache, error) {
	opts := []internal.EngineOption{
		internal.WithLanguage(config.Language),
		internal.WithEngineLogger(logger),
	}

	var cache *internal.Cache
	if config.Cache.Dir != "" {
		var err error
		cache, err = internal.NewCache(config.Cache.Dir)
		if err != nil {
			return nil, nil, err
		}
		if config.Cache.MaxAge > 0 {
			cache.SetMaxAge(config.Cache.MaxAge)
		}
		opts = append(opts, internal.WithCache(cache))
	}

	engine, err := internal.NewEngine(config.Oracle, opts...)
	if err != nil {
		return nil, nil, err
	}
	return engine, cache, nil
}

type Processor func(ctx context.Context, engine ReduceEngine, path string) (*tt.Report, error)

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine ReduceEngine,
	paths []string,
	jobs int,
	processor Processor,
) ([]*tt.Report, error) {
	var allReports []*tt.Report
	for _, path := range paths {
		reports, err := ProcessPath(ctx, logger, engine, path, jobs, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allReports = append(allReports, reports...)
	}

	return allReports, nil
}

// ProcessPath reduces a file, or every supported file under a directory
// using up to jobs workers. Failures of single files in a directory are
// logged and skipped.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine ReduceEngine,
	path string,
	jobs int,
	processor Processor,
) ([]*tt.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		report, err := processor(ctx, engine, path)
		if err != nil {
			return nil, err
		}
		return []*tt.Report{report}, nil
	}

	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if jobs < 1 {
		jobs = 1
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var (
		g       errgroup.Group
		mu      sync.Mutex
		reports []*tt.Report
	)
	g.SetLimit(jobs)

	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		fp := filePath
		g.Go(func() error {
			bar.Describe(filepath.Base(fp))
			report, err := processor(ctx, engine, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
			} else {
				mu.Lock()
				reports = append(reports, report)
				mu.Unlock()
			}
			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Filename < reports[j].Filename
	})
	return reports, nil
}

// collectFiles lists the supported files under root, largest first, so
// that the slowest reductions start early.
func collectFiles(root string) ([]string, error) {
	exts := make([]string, 0, len(desiredExtensions))
	for ext := range desiredExtensions {
		exts = append(exts, ext)
	}
	s := scanner.New(root, exts...)
	s.Skip = func(path string) bool {
		return !hasDesiredExtension(path)
	}

	infos, err := s.Scan()
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	files := make([]string, len(infos))
	for i, info := range infos {
		files[i] = info.Path
	}
	return files, nil
}

func ProcessFile(ctx context.Context, engine ReduceEngine, filePath string) (*tt.Report, error) {
	return engine.Run(ctx, filePath)
}

func ProcessSource(ctx context.Context, engine ReduceEngine, filename string, source []byte) (*tt.Report, error) {
	return engine.RunSource(ctx, filename, source)
}

var desiredExtensions = map[string]bool{
	".go":   true,
	".gno":  true,
	".js":   true,
	".mjs":  true,
	".cjs":  true,
	".jsx":  true,
	".ts":   true,
	".tsx":  true,
	".py":   true,
	".rs":   true,
	".java": true,
}

// hasDesiredExtension also skips earlier outputs and backups.
func hasDesiredExtension(path string) bool {
	ext := filepath.Ext(path)
	if !desiredExtensions[ext] {
		return false
	}
	base := filepath.Ext(path[:len(path)-len(ext)])
	return base != writer.DefaultSuffix
}
