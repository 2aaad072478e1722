package main

import (
	"fmt"
	"strconv"
	"strings"

	"fodi-backend/internal/console"

	"github.com/spf13/cobra"
)

func (a *cli) semiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semi",
		Short: "Manage semi-finished goods",
	}
	cmd.AddCommand(a.semiListCmd(), a.semiDeleteCmd())
	return cmd
}

func (a *cli) semiListCmd() *cobra.Command {
	var archived bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List semi-finished goods with their cost",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page := console.NewSemiFinishedPage(a.client(), archived)
			if err := page.Load(); err != nil {
				return a.fail(err)
			}
			t := a.table("ID", "НАЗВАНИЕ", "КАТЕГОРИЯ", "ВЫХОД", "СЕБЕСТ./ЕД", "СЕБЕСТ.", "СОСТАВ")
			for _, sf := range page.Items() {
				name := sf.Name
				if sf.IsArchived {
					name += " (архив)"
				}
				t.Append([]string{
					strconv.FormatUint(uint64(sf.ID), 10), name, sf.Category,
					formatQuantity(sf.OutputQuantity, sf.OutputUnit),
					fmt.Sprintf("%.4f", sf.CostPerUnit), fmt.Sprintf("%.2f", sf.TotalCost),
					strconv.Itoa(len(sf.Items)),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived goods")
	return cmd
}

func (a *cli) semiDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a semi-finished good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := console.NewSemiFinishedPage(a.client(), true)
			if err := page.Load(); err != nil {
				return a.fail(err)
			}
			rec, ok := page.Find(id)
			if !ok {
				return fmt.Errorf("полуфабрикат %d не найден", id)
			}
			page.RequestDelete(rec)
			if !a.confirm(yes, fmt.Sprintf("Удалить полуфабрикат %q?", rec.Name)) {
				page.Cancel()
				fmt.Fprintln(a.out, "Отменено")
				return nil
			}
			if err := page.ConfirmDelete(); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, "Полуфабрикат удалён")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func (a *cli) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage menu products",
	}
	cmd.AddCommand(a.productsListCmd(), a.productsDeleteCmd(), a.productsQuoteCmd())
	return cmd
}

func (a *cli) productsListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products with price and cost",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page := console.NewProductsPage(a.client(), category)
			if err := page.Load(); err != nil {
				return a.fail(err)
			}
			t := a.table("ID", "НАЗВАНИЕ", "КАТЕГОРИЯ", "ЦЕНА", "СЕБЕСТ.", "ВИДИМ")
			for _, p := range page.Items() {
				visible := "нет"
				if p.IsVisible {
					visible = "да"
				}
				t.Append([]string{
					strconv.FormatUint(uint64(p.ID), 10), p.Name, p.Category,
					fmt.Sprintf("%.2f", p.Price), fmt.Sprintf("%.2f", p.Cost), visible,
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only products of this category")
	return cmd
}

func (a *cli) productsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := console.NewProductsPage(a.client(), "")
			if err := page.Load(); err != nil {
				return a.fail(err)
			}
			rec, ok := page.Find(id)
			if !ok {
				return fmt.Errorf("товар %d не найден", id)
			}
			page.RequestDelete(rec)
			if !a.confirm(yes, fmt.Sprintf("Удалить товар %q?", rec.Name)) {
				page.Cancel()
				fmt.Fprintln(a.out, "Отменено")
				return nil
			}
			if err := page.ConfirmDelete(); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, "Товар удалён")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

// parseComponent reads "kind:id:quantity[:unit]", kind being ingredient (i)
// or semi (s).
func parseComponent(raw string) (console.ComponentDraft, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return console.ComponentDraft{}, fmt.Errorf("компонент %q: ожидается вид:id:количество[:единица]", raw)
	}
	var kind string
	switch strings.ToLower(parts[0]) {
	case "i", "ing", "ingredient":
		kind = "ingredient"
	case "s", "semi", "semi_finished":
		kind = "semi_finished"
	default:
		return console.ComponentDraft{}, fmt.Errorf("компонент %q: неизвестный вид %q", raw, parts[0])
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 {
		return console.ComponentDraft{}, fmt.Errorf("компонент %q: некорректный ID", raw)
	}
	d := console.ComponentDraft{Kind: kind, RefID: uint(id), Quantity: parts[2]}
	if len(parts) == 4 {
		d.Unit = parts[3]
	}
	return d, nil
}

func (a *cli) productsQuoteCmd() *cobra.Command {
	var (
		items  []string
		markup float64
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a composition and suggest a sale price",
		Example: "  fodictl products quote --item ingredient:7:40:g --item semi:3:150:g\n" +
			"  fodictl products quote --item i:12:1:pcs --markup 2.5",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var draft console.ProductDraft
			for _, raw := range items {
				c, err := parseComponent(raw)
				if err != nil {
					return err
				}
				draft.Components = append(draft.Components, c)
			}

			var m *float64
			if cmd.Flags().Changed("markup") {
				m = &markup
			}
			q, err := console.Products{Client: a.client()}.Quote(draft, m)
			if err != nil {
				return a.fail(err)
			}

			t := a.table("ВИД", "НАЗВАНИЕ", "КОЛ-ВО", "ЦЕНА/ЕД", "СУММА")
			for _, c := range q.Components {
				t.Append([]string{
					c.Kind, c.Name, formatQuantity(c.Quantity, c.Unit),
					fmt.Sprintf("%.4f", c.PricePerUnit), fmt.Sprintf("%.2f", c.Total),
				})
			}
			t.Render()
			fmt.Fprintf(a.out, "Себестоимость: %.2f\nНаценка: ×%.2f\nРекомендуемая цена: %.2f\n",
				q.Cost, q.Markup, q.SuggestedPrice)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&items, "item", nil, "component as kind:id:quantity[:unit], repeatable")
	cmd.Flags().Float64Var(&markup, "markup", 0, "markup multiplier (server default when unset)")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}
