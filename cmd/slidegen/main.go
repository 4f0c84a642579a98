// Package main provides the CLI entry point for slidegen.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zhenghaolin/go-slidegen/pkg/slidegen"
)

var (
	configPath        string
	outputPath        string
	keepIntermediates bool
	exportImages      bool
	verbose           bool
)

// fileConfig mirrors the optional YAML configuration file. Command line
// arguments and flags take precedence over it.
type fileConfig struct {
	Template    string            `yaml:"template"`
	Data        string            `yaml:"data"`
	Output      string            `yaml:"output"`
	UnitSuffix  string            `yaml:"unit_suffix"`
	RowsPerPage int               `yaml:"rows_per_page"`
	DateColumn  string            `yaml:"date_column"`
	Fields      map[string]string `yaml:"fields"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "slidegen [template.pptx] [data.csv|.xlsx|.xls]",
		Short: "Generate sales report decks from a PPTX template",
		Long: `slidegen reads sales records from a spreadsheet and expands a PPTX
template into a finished report: per-record congratulation slides, a paginated
ranking of branch/product totals, and untouched static slides.`,
		Args:          cobra.MaximumNArgs(2),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: sales-report(<start>-<end>).pptx)")
	rootCmd.Flags().BoolVar(&keepIntermediates, "keep-intermediates", false, "Keep split and part files for debugging")
	rootCmd.Flags().BoolVar(&exportImages, "export-images", false, "Also render the slides to PNG files (requires LibreOffice or PowerPoint)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Printfln("%v", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var fc fileConfig
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}

	templatePath, dataPath := fc.Template, fc.Data
	if len(args) > 0 {
		templatePath = args[0]
	}
	if len(args) > 1 {
		dataPath = args[1]
	}
	if templatePath == "" || dataPath == "" {
		return fmt.Errorf("a template and a data file are required, via arguments or --config")
	}
	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", templatePath)
	}

	config := slidegen.DefaultConfig()
	if fc.UnitSuffix != "" {
		config.UnitSuffix = fc.UnitSuffix
	}
	if fc.RowsPerPage > 0 {
		config.RowsPerPage = fc.RowsPerPage
	}
	config.KeepIntermediates = keepIntermediates
	if verbose {
		config.LogLevel = "debug"
	}
	slidegen.SetGlobalConfig(config)

	fields := slidegen.DefaultFieldMap()
	for token, column := range fc.Fields {
		fields[token] = column
	}
	dateColumn := slidegen.DefaultDateColumn
	if fc.DateColumn != "" {
		dateColumn = fc.DateColumn
	}

	output := outputPath
	if output == "" {
		output = fc.Output
	}
	if output == "" {
		records, err := slidegen.ReadRecords(dataPath)
		if err != nil {
			return err
		}
		output = slidegen.DefaultOutputName(dataPath, records, dateColumn)
	}

	bar, _ := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle("Generating report").
		WithShowCount(false).
		Start()
	last := 0
	gen := slidegen.NewGenerator(
		slidegen.WithConfig(config),
		slidegen.WithFieldMap(fields),
		slidegen.WithDateColumn(dateColumn),
		slidegen.WithProgress(func(current, total int, message string) {
			bar.UpdateTitle(message)
			if current > last {
				bar.Add(current - last)
				last = current
			}
		}),
	)

	result, err := gen.GenerateReport(templatePath, dataPath, output)
	bar.Stop()
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %d slides from %d records to %s",
		result.Slides, result.Records, result.OutputPath)

	if exportImages {
		imagesDir := filepath.Join(filepath.Dir(result.OutputPath), "images")
		if err := os.MkdirAll(imagesDir, 0755); err != nil {
			return err
		}
		if err := slidegen.ExportImages(result.OutputPath, imagesDir); err != nil {
			pterm.Warning.Printfln("Image export skipped: %v", err)
		} else {
			pterm.Success.Printfln("Exported slide images to %s", imagesDir)
		}
	}
	return nil
}
