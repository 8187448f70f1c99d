package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// parseItem reads "description:price" or "description:quantity:price".
func parseItem(s string) (models.LineItem, error) {
	parts := strings.Split(s, ":")
	var desc, qty, price string
	switch len(parts) {
	case 2:
		desc, qty, price = parts[0], "1", parts[1]
	case 3:
		desc, qty, price = parts[0], parts[1], parts[2]
	default:
		return models.LineItem{}, fmt.Errorf("invalid item %q, want description[:quantity]:price", s)
	}

	q, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
	if err != nil || q < 1 {
		return models.LineItem{}, fmt.Errorf("invalid quantity in item %q", s)
	}
	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil || p.IsNegative() {
		return models.LineItem{}, fmt.Errorf("invalid price in item %q", s)
	}

	return models.LineItem{
		Type:        models.LineManual,
		Description: strings.TrimSpace(desc),
		Quantity:    q,
		UnitPrice:   p,
		Subtotal:    models.Subtotal(q, p),
	}, nil
}

func buildDraft(items []string) (models.Draft, error) {
	d := models.Draft{ActiveTab: models.TabManual}
	for _, s := range items {
		l, err := parseItem(s)
		if err != nil {
			return models.Draft{}, err
		}
		d.Lines = append(d.Lines, l)
	}
	d.Total = d.LinesTotal()
	return d, nil
}

func newSaleCmd() *cobra.Command {
	var (
		eventID string
		items   []string
		method  string
	)
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record a sale at an event",
		Example: `  client sale --event 6f1c... --item "honey:2:7.50" --item "candle:4" --method card`,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := buildDraft(items)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *App) error {
				user, err := app.user()
				if err != nil {
					return err
				}
				app.drafts.Save(eventID, draft)

				t, lines, err := app.commits.CommitDraft(ctx, user, eventID, draft, models.PaymentMethod(method))
				if err != nil {
					return err
				}
				app.printf("ticket %s total %s\n", t.ID, t.Total.StringFixed(2))
				for _, l := range lines {
					app.printf("  %s  %d x %s  %s\n", l.LineID, l.Quantity, l.Description, l.Subtotal.StringFixed(2))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "event id")
	cmd.Flags().StringArrayVar(&items, "item", nil, "sold item as description[:quantity]:price, repeatable")
	cmd.Flags().StringVar(&method, "method", string(models.PaymentCash), "payment method: cash, card or transfer")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newRefundCmd() *cobra.Command {
	var eventID, lineID string
	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Refund one line of a sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				user, err := app.user()
				if err != nil {
					return err
				}
				credit, err := app.commits.RefundLine(ctx, user, models.LineKey{EventID: eventID, LineID: lineID})
				if err != nil {
					return err
				}
				app.printf("credit line %s %s\n", credit.LineID, credit.Subtotal.StringFixed(2))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "event id")
	cmd.Flags().StringVar(&lineID, "line", "", "line id, e.g. L0001")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}
