package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inhand/internal/domain/salary"
)

type componentFlag struct {
	name  string
	key   string
	usage string
	set   func(*salary.Components, decimal.Decimal)
}

var componentFlags = []componentFlag{
	{"basic", "components.basic", "monthly basic salary", func(c *salary.Components, d decimal.Decimal) { c.Basic = d }},
	{"hra", "components.hra", "monthly house rent allowance", func(c *salary.Components, d decimal.Decimal) { c.HRA = d }},
	{"special", "components.special_allowance", "monthly special allowance", func(c *salary.Components, d decimal.Decimal) { c.SpecialAllowance = d }},
	{"bonus", "components.bonus_annual", "annual bonus / ex gratia", func(c *salary.Components, d decimal.Decimal) { c.BonusAnnual = d }},
	{"employer-pf", "components.employer_pf", "monthly employer PF contribution", func(c *salary.Components, d decimal.Decimal) { c.EmployerPF = d }},
	{"gratuity", "components.gratuity", "monthly gratuity", func(c *salary.Components, d decimal.Decimal) { c.Gratuity = d }},
	{"medical", "components.medical_insurance", "monthly medical insurance", func(c *salary.Components, d decimal.Decimal) { c.MedicalInsurance = d }},
	{"other", "components.other_allowances", "monthly other allowances", func(c *salary.Components, d decimal.Decimal) { c.OtherAllowances = d }},
}

func addComponentFlags(cmd *cobra.Command) {
	for _, f := range componentFlags {
		cmd.Flags().String(f.name, "0", f.usage)
	}
}

// bindComponentFlags runs per command so the same keys can back flags on
// several subcommands.
func bindComponentFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, f := range componentFlags {
		if err := v.BindPFlag(f.key, cmd.Flags().Lookup(f.name)); err != nil {
			return err
		}
	}
	return nil
}

func componentsFrom(v *viper.Viper) (salary.Components, error) {
	var c salary.Components
	var issues []salary.FieldIssue
	for _, f := range componentFlags {
		raw := v.GetString(f.key)
		if raw == "" {
			raw = "0"
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			issues = append(issues, salary.FieldIssue{Field: f.name, Reason: fmt.Sprintf("must be numeric, got %q", raw)})
			continue
		}
		f.set(&c, amount)
	}
	if len(issues) > 0 {
		return salary.Components{}, &salary.InputError{Issues: issues}
	}
	return c, nil
}
