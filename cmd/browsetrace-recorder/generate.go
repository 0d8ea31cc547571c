package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vincentbai/browsetrace-recorder/internal/emitter"
	"github.com/vincentbai/browsetrace-recorder/internal/models"
	"github.com/vincentbai/browsetrace-recorder/internal/pipeline"
	"github.com/vincentbai/browsetrace-recorder/internal/report"
)

func newGenerateCmd(a *app) *cobra.Command {
	var inputPath, startURL, formatKey, outputPath string

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an automation script from a recorded session export",
		Long: `Reads a session export (the JSON served by GET /sessions/{id}/events) and
writes the script in the requested format. Without --output the script is
printed to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatKey == "" {
				formatKey = a.cfg.Recorder.DefaultFormat
			}
			format, ok := emitter.Lookup(formatKey)
			if !ok {
				return fmt.Errorf("unknown format %q", formatKey)
			}

			session, err := readRecording(cmd.InOrStdin(), inputPath)
			if err != nil {
				return err
			}
			if err := resolveStartURL(&session, startURL); err != nil {
				return err
			}

			script := pipeline.GenerateScript(session.Events, session.StartURL, format.Key)
			return writeArtifact(a.logger, cmd.OutOrStdout(), outputPath, script,
				zap.String("format", format.Key), zap.Int("events", len(session.Events)))
		},
	}

	generateCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Session export to read, - for stdin")
	generateCmd.Flags().StringVar(&startURL, "start-url", "", "Start URL, overrides start_url from the export")
	generateCmd.Flags().StringVarP(&formatKey, "format", "f", "", "Script format (default from recorder.default_format)")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. If unset, the script is printed to stdout.")

	return generateCmd
}

func newReportCmd(a *app) *cobra.Command {
	var inputPath, startURL, outputPath string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Build the HTML report for a recorded session export",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := readRecording(cmd.InOrStdin(), inputPath)
			if err != nil {
				return err
			}
			if err := resolveStartURL(&session, startURL); err != nil {
				return err
			}

			html := pipeline.BuildReport(session.Events, session.Metadata(lastEventTime(session)))
			return writeArtifact(a.logger, cmd.OutOrStdout(), outputPath, html,
				zap.String("report", report.FileName), zap.Int("events", len(session.Events)))
		},
	}

	reportCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Session export to read, - for stdin")
	reportCmd.Flags().StringVar(&startURL, "start-url", "", "Start URL, overrides start_url from the export")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. If unset, the report is printed to stdout.")

	return reportCmd
}

// readRecording decodes a session export. A bare {"events": [...]} batch is
// accepted as well.
func readRecording(stdin io.Reader, path string) (models.Session, error) {
	var reader io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return models.Session{}, fmt.Errorf("failed to open input: %w", err)
		}
		defer file.Close()
		reader = file
	}

	var session models.Session
	if err := json.NewDecoder(reader).Decode(&session); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode session export: %w", err)
	}
	return session, nil
}

// resolveStartURL picks the start URL: the flag, then the export's start_url,
// then the page of the first captured event.
func resolveStartURL(session *models.Session, override string) error {
	if override != "" {
		session.StartURL = override
	}
	for _, event := range session.Events {
		if session.StartURL != "" {
			break
		}
		session.StartURL = event.PageURL
	}
	if session.StartURL == "" {
		return errors.New("a start URL is required (--start-url or start_url in the export)")
	}
	return nil
}

// lastEventTime stands in for "now" when an offline export was never stopped.
func lastEventTime(session models.Session) int64 {
	if n := len(session.Events); n > 0 {
		return session.Events[n-1].Timestamp
	}
	return session.StartedAt
}

func writeArtifact(logger *zap.Logger, stdout io.Writer, outputPath, content string, fields ...zap.Field) error {
	if outputPath == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	logger.Info("Artifact written", append(fields,
		zap.String("path", outputPath),
		zap.String("size", humanize.Bytes(uint64(len(content)))))...)
	return nil
}
