package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inhand/internal/cli"
	"inhand/internal/domain/salary"
)

const (
	formatTable = "table"
	formatText  = "text"
	formatJSON  = "json"
	formatPDF   = "pdf"
)

func calculateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Break a salary structure into in-hand pay and taxes",
		Long: `Calculate applies the selected regime to the salary components and prints
the eleven line item breakup.

Formats: table (styled), text (shareable report), json, pdf.`,
		Example: `  salarycalc calculate --basic 40000 --hra 20000 --special 10000
  salarycalc calculate --basic 50000 --hra 25000 --employer-pf 6000 --regime old --format pdf -o breakup.pdf`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindComponentFlags(v, cmd); err != nil {
				return err
			}
			return v.BindPFlag("regime", cmd.Flags().Lookup("regime"))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := componentsFrom(v)
			if err != nil {
				return err
			}
			regime, err := salary.ParseRegime(v.GetString("regime"))
			if err != nil {
				return fmt.Errorf("%w: %q (use old, new or new_post_2025)", err, v.GetString("regime"))
			}
			b, err := salary.Calculate(c, regime)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			title, _ := cmd.Flags().GetString("title")
			return writeBreakdown(cmd.OutOrStdout(), output, format, title, b)
		},
	}

	addComponentFlags(cmd)
	cmd.Flags().String("regime", string(salary.RegimeNewCurrent), "tax regime (old, new, new_post_2025)")
	cmd.Flags().StringP("format", "f", formatTable, "output format (table, text, json, pdf)")
	cmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	cmd.Flags().String("title", "Salary Breakup", "title for pdf output")
	return cmd
}

func writeBreakdown(stdout io.Writer, output, format, title string, b salary.Breakdown) error {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case formatTable:
		if err := cli.RenderBreakdown(&buf, b); err != nil {
			return err
		}
	case formatText:
		if err := salary.WriteReport(&buf, b); err != nil {
			return err
		}
	case formatJSON:
		payload, err := json.MarshalIndent(struct {
			salary.Breakdown
			Rows []salary.Row `json:"rows"`
		}{b, b.Rows()}, "", "  ")
		if err != nil {
			return err
		}
		buf.Write(payload)
		buf.WriteByte('\n')
	case formatPDF:
		if err := salary.WritePDF(&buf, b, title); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if output == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintln(stdout, cli.SuccessStyle.Render("✓ wrote "+output))
	return nil
}
