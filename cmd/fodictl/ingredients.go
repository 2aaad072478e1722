package main

import (
	"fmt"
	"strconv"
	"strings"

	"fodi-backend/internal/adminclient"
	"fodi-backend/internal/console"
	"fodi-backend/internal/costcalc"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("некорректный ID: %q", arg)
	}
	return uint(id), nil
}

// formatQuantity appends the unit unless the display already switched it.
func formatQuantity(v float64, unit string) string {
	s := costcalc.FormatVolumeDisplay(v, unit)
	if strings.ContainsRune(s, ' ') {
		return s
	}
	return s + " " + unit
}

func (a *cli) ingredientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ingredients",
		Aliases: []string{"ing"},
		Short:   "Manage ingredient batches",
	}
	cmd.AddCommand(
		a.ingredientsListCmd(),
		a.ingredientsSearchCmd(),
		a.ingredientsAddCmd(),
		a.ingredientsEditCmd(),
		a.ingredientsDeleteCmd(),
		a.ingredientsMovementsCmd(),
		a.ingredientsExportCmd(),
		a.ingredientsImportCmd(),
	)
	return cmd
}

func (a *cli) printIngredients(list []adminclient.Ingredient) {
	t := a.table("ID", "НАЗВАНИЕ", "ПАРТИЯ", "КАТЕГОРИЯ", "БРУТТО", "НЕТТО", "ОТХОД %", "ЦЕНА/ЕД", "ГОДЕН ДО")
	for _, ing := range list {
		t.Append([]string{
			strconv.FormatUint(uint64(ing.ID), 10), ing.Name, ing.BatchNumber, ing.Category,
			formatQuantity(ing.Brutto, ing.Unit),
			formatQuantity(ing.Netto, ing.Unit),
			fmt.Sprintf("%.2f", ing.WastePercent), fmt.Sprintf("%.2f", ing.PricePerUnit), ing.ExpiryDate,
		})
	}
	t.Render()
}

func (a *cli) ingredientsListCmd() *cobra.Command {
	var (
		category string
		grouped  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List batches, optionally grouped by ingredient name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if grouped {
				groups, err := a.client().ListIngredientGroups(category)
				if err != nil {
					return a.fail(err)
				}
				for _, g := range groups {
					fmt.Fprintf(a.out, "%s: %d парт., нетто %s\n",
						g.Name, len(g.Batches), formatQuantity(g.TotalNetto, g.Unit))
					a.printIngredients(g.Batches)
					fmt.Fprintln(a.out)
				}
				return nil
			}

			page := console.NewIngredientsPage(a.client(), category)
			if err := page.Load(); err != nil {
				return a.fail(err)
			}
			a.printIngredients(page.Items())
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only batches of this category")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "group batches by ingredient name")
	return cmd
}

func (a *cli) ingredientsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search batches by name, category or supplier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client().SearchIngredients(strings.Join(args, " "))
			if err != nil {
				return a.fail(err)
			}
			a.printIngredients(list)
			return nil
		},
	}
}

// ingredientFlags are the batch form fields; edit only applies the ones set.
type ingredientFlags struct {
	draft console.IngredientDraft
}

func (f *ingredientFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.draft.Name, "name", "", "ingredient name")
	fs.StringVar(&f.draft.Unit, "unit", "", "unit: g, kg, ml, l or pcs")
	fs.StringVar(&f.draft.BatchNumber, "batch", "", "batch number (generated when empty)")
	fs.StringVar(&f.draft.Category, "category", "", "category")
	fs.StringVar(&f.draft.Supplier, "supplier", "", "supplier")
	fs.StringVar(&f.draft.Brutto, "brutto", "", "gross quantity")
	fs.StringVar(&f.draft.Netto, "netto", "", "net quantity after trimming")
	fs.StringVar(&f.draft.WastePercent, "waste", "", "waste percent")
	fs.StringVar(&f.draft.ShelfLifeDays, "shelf-life", "", "shelf life in days")
	fs.StringVar(&f.draft.GrossPrice, "price", "", "price paid for the whole batch")
}

func (f *ingredientFlags) apply(fs *pflag.FlagSet, d *console.IngredientDraft) {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("name", &d.Name, f.draft.Name)
	set("unit", &d.Unit, f.draft.Unit)
	set("batch", &d.BatchNumber, f.draft.BatchNumber)
	set("category", &d.Category, f.draft.Category)
	set("supplier", &d.Supplier, f.draft.Supplier)
	set("brutto", &d.Brutto, f.draft.Brutto)
	set("netto", &d.Netto, f.draft.Netto)
	set("waste", &d.WastePercent, f.draft.WastePercent)
	set("shelf-life", &d.ShelfLifeDays, f.draft.ShelfLifeDays)
	set("price", &d.GrossPrice, f.draft.GrossPrice)

	switch {
	case fs.Changed("netto"):
		d.Recalculate("netto")
	case fs.Changed("brutto"), fs.Changed("waste"):
		d.Recalculate("waste_percent")
	}
}

func (a *cli) ingredientsAddCmd() *cobra.Command {
	var f ingredientFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page := console.NewIngredientsPage(a.client(), "")
			page.StartCreate()
			_ = page.EditDraft(func(d *console.IngredientDraft) { f.apply(cmd.Flags(), d) })
			if err := page.Submit(); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, "Партия добавлена")
			return nil
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("brutto")
	return cmd
}

func (a *cli) ingredientsEditCmd() *cobra.Command {
	var f ingredientFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := console.NewIngredientsPage(a.client(), "")
			if err := page.Load(); err != nil {
				return a.fail(err)
			}
			rec, ok := page.Find(id)
			if !ok {
				return fmt.Errorf("партия %d не найдена", id)
			}
			page.StartEdit(rec)
			_ = page.EditDraft(func(d *console.IngredientDraft) { f.apply(cmd.Flags(), d) })
			if err := page.Submit(); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, "Партия обновлена")
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *cli) ingredientsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a batch and its movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := console.NewIngredientsPage(a.client(), "")
			if err := page.Load(); err != nil {
				return a.fail(err)
			}
			rec, ok := page.Find(id)
			if !ok {
				return fmt.Errorf("партия %d не найдена", id)
			}
			page.RequestDelete(rec)
			if !a.confirm(yes, fmt.Sprintf("Удалить партию %s (%s)?", rec.BatchNumber, rec.Name)) {
				page.Cancel()
				fmt.Fprintln(a.out, "Отменено")
				return nil
			}
			if err := page.ConfirmDelete(); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, "Партия удалена")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func (a *cli) ingredientsMovementsCmd() *cobra.Command {
	var (
		kind     string
		quantity string
		note     string
	)
	cmd := &cobra.Command{
		Use:   "movements <id>",
		Short: "Show the movement log of a batch, or append to it with --type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client := a.client()

			if kind != "" {
				q, err := number(quantity)
				if err != nil {
					return &console.DraftError{Field: "quantity", Value: quantity}
				}
				if _, err := client.AddMovement(id, adminclient.MovementInput{Type: kind, Quantity: q, Note: note}); err != nil {
					return a.fail(err)
				}
			}

			list, err := client.ListMovements(id)
			if err != nil {
				return a.fail(err)
			}
			t := a.table("ДАТА", "ТИП", "КОЛ-ВО", "КОММЕНТАРИЙ")
			for _, m := range list.Movements {
				t.Append([]string{
					m.CreatedAt.Local().Format("02.01.2006 15:04"), m.Type,
					fmt.Sprintf("%+.3f", m.Quantity), m.Note,
				})
			}
			t.Render()
			fmt.Fprintf(a.out, "Остаток: %s\n", formatQuantity(list.Stock, list.Unit))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "type", "", "append a movement: addition, removal or adjustment")
	cmd.Flags().StringVar(&quantity, "quantity", "", "movement quantity")
	cmd.Flags().StringVar(&note, "note", "", "movement note")
	return cmd
}

func (a *cli) ingredientsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Download all batches as a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client().ExportIngredients(args[0]); err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.out, "Сохранено в %s\n", args[0])
			return nil
		},
	}
}

func (a *cli) ingredientsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Upload batches from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client().ImportIngredients(args[0])
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.out, "Импортировано: %d, пропущено: %d\n", res.Imported, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintln(a.out, "  "+e)
			}
			return nil
		},
	}
}
