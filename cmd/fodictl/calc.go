package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fodi-backend/internal/costcalc"

	"github.com/spf13/cobra"
)

// calcCmd runs the cost utilities offline, without signing in.
func calcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Waste, cost and price calculators",
	}
	cmd.AddCommand(calcWasteCmd(), calcCostCmd(), calcPriceCmd(), calcVolumeCmd(), calcExpiryCmd())
	return cmd
}

func number(arg string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(costcalc.NormalizeNumberInput(arg)), 64)
	if err != nil || !costcalc.IsFinite(v) {
		return 0, fmt.Errorf("не число: %q", arg)
	}
	return v, nil
}

func calcWasteCmd() *cobra.Command {
	var brutto, netto, waste string
	cmd := &cobra.Command{
		Use:   "waste",
		Short: "Derive netto from brutto and waste %, or waste % from brutto and netto",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, label := costcalc.TargetNetto, "Нетто"
			if cmd.Flags().Changed("netto") {
				target, label = costcalc.TargetWaste, "Отход, %"
			}
			res := costcalc.CalculateWaste(brutto, netto, waste, target)
			if res == "" {
				return errors.New("недостаточно данных или некорректные значения")
			}
			b, _ := number(brutto)
			var n float64
			if target == costcalc.TargetWaste {
				n, _ = number(netto)
			} else {
				n, _ = number(res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\nВыход: %.2f%%\n", label, res, costcalc.YieldPercent(b, n))
			return nil
		},
	}
	cmd.Flags().StringVar(&brutto, "brutto", "", "gross quantity")
	cmd.Flags().StringVar(&netto, "netto", "", "net quantity")
	cmd.Flags().StringVar(&waste, "waste", "", "waste percent")
	_ = cmd.MarkFlagRequired("brutto")
	return cmd
}

func calcCostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cost <quantity> <price-per-unit> <unit>",
		Short: "Cost of a quantity at a canonical unit price (per kg, l or piece)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := number(args[0])
			if err != nil {
				return err
			}
			p, err := number(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", costcalc.CalculateTotalCost(q, p, args[2]))
			return nil
		},
	}
}

func calcPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <total-cost> <quantity> <unit>",
		Short: "Canonical unit price of a purchase",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := number(args[0])
			if err != nil {
				return err
			}
			q, err := number(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", costcalc.CalculatePricePerUnit(total, q, args[2]))
			return nil
		},
	}
}

func calcVolumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volume <value> <unit>",
		Short: "Show a volume in the more readable unit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := number(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), costcalc.FormatVolumeDisplay(v, args[1]))
			return nil
		},
	}
}

func calcExpiryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expiry <days>",
		Short: "Expiry date for a shelf life starting today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("не число: %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), costcalc.ExpiryDate(days))
			return nil
		},
	}
}
