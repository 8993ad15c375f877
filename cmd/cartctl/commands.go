package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jcmexdev/supermarket-storefront/internal/cart/app"
	"github.com/jcmexdev/supermarket-storefront/internal/cart/domain"
	journalsqlite "github.com/jcmexdev/supermarket-storefront/internal/cart/journal/sqlite"
	"github.com/jcmexdev/supermarket-storefront/internal/catalog"
	"github.com/jcmexdev/supermarket-storefront/internal/pkg/config"
	"github.com/jcmexdev/supermarket-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/supermarket-storefront/internal/storefront/bootstrap"
)

type cli struct {
	out     io.Writer
	envFile string
	verbose bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCommand(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Inspect and edit the persisted storefront cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file read before the environment")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at the configured LOG_LEVEL instead of warn")

	root.AddCommand(
		c.listCommand(),
		c.addCommand(),
		c.removeCommand(),
		c.clearCommand(),
		c.qtyCommand(),
		c.productsCommand(),
		c.historyCommand(),
	)
	return root
}

func (c *cli) init() error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	level := "warn"
	if c.verbose {
		level = cfg.App.LogLevel
	}
	c.cfg = cfg
	c.logger = telemetry.InitLogger(telemetry.LoggerOptions{
		Service: "cartctl",
		Env:     cfg.App.Env,
		Level:   level,
		Output:  os.Stderr,
	})
	return nil
}

// withCart runs fn against a freshly restored cart and flushes it afterwards.
func (c *cli) withCart(ctx context.Context, fn func(*app.Store) error) error {
	cart, err := bootstrap.OpenCart(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	runErr := fn(cart.Store)
	if err := cart.Close(ctx); err != nil {
		return err
	}
	if cart.Persister.Failures() > 0 {
		return errors.New("cart changes were not saved")
	}
	return runErr
}

func (c *cli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the cart contents and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCart(cmd.Context(), func(s *app.Store) error {
				c.printCart(s.Snapshot())
				return nil
			})
		},
	}
}

func (c *cli) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a catalog product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			cat := bootstrap.NewCatalog(c.cfg, c.logger)
			p, err := cat.GetProduct(cmd.Context(), id)
			if err != nil {
				return errors.Wrapf(err, "fetch product %d", id)
			}
			listing := catalog.NewListing(p, cat.BaseURL(), decimal.NewFromInt(c.cfg.Catalog.PriceScale))

			return c.withCart(cmd.Context(), func(s *app.Store) error {
				snap := s.AddItem(listing.CartProduct())
				fmt.Fprintf(c.out, "added %q (now %d in cart)\n", listing.Title, s.ItemQuantity(domain.ProductID(id)))
				c.printTotals(snap)
				return nil
			})
		},
	}
}

func (c *cli) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return c.withCart(cmd.Context(), func(s *app.Store) error {
				if s.ItemQuantity(domain.ProductID(id)) == 0 {
					fmt.Fprintf(c.out, "product %d is not in the cart\n", id)
					return nil
				}
				snap := s.RemoveItem(domain.ProductID(id))
				fmt.Fprintf(c.out, "removed one of product %d (now %d in cart)\n", id, s.ItemQuantity(domain.ProductID(id)))
				c.printTotals(snap)
				return nil
			})
		},
	}
}

func (c *cli) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCart(cmd.Context(), func(s *app.Store) error {
				s.ClearCart()
				fmt.Fprintln(c.out, "cart cleared")
				return nil
			})
		},
	}
}

func (c *cli) qtyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "qty <product-id>",
		Short: "Print how many units of a product are in the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return c.withCart(cmd.Context(), func(s *app.Store) error {
				fmt.Fprintln(c.out, s.ItemQuantity(domain.ProductID(id)))
				return nil
			})
		},
	}
}

func (c *cli) productsCommand() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products with storefront prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat := bootstrap.NewCatalog(c.cfg, c.logger)
			products, err := cat.ListProducts(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "list products")
			}
			listings := catalog.NewListings(products, cat.BaseURL(), decimal.NewFromInt(c.cfg.Catalog.PriceScale))
			listings = catalog.Filter(listings, search)

			return c.withCart(cmd.Context(), func(s *app.Store) error {
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tSTOCK\tIN CART")
				for _, l := range listings {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", l.ID, l.Title, l.Price, l.Stock, s.ItemQuantity(domain.ProductID(l.ID)))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive match on title or description")
	return cmd
}

func (c *cli) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the latest journaled cart operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.Cart.JournalPath == "" {
				return errors.New("CART_JOURNAL_PATH is not set")
			}
			if limit < 1 {
				return errors.Errorf("invalid limit %d", limit)
			}
			repo, err := journalsqlite.Open(c.cfg.Cart.JournalPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			entries, err := repo.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tOP\tITEMS\tTOTAL\tRECORDED AT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", e.Version, e.Op, e.TotalItems, e.TotalPrice, e.RecordedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows to show")
	return cmd
}

func (c *cli) printCart(snap app.Snapshot) {
	if len(snap.Items) == 0 {
		fmt.Fprintln(c.out, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range snap.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.ID, it.Title, it.Quantity, it.Price, it.Subtotal())
	}
	_ = tw.Flush()
	c.printTotals(snap)
}

func (c *cli) printTotals(snap app.Snapshot) {
	fmt.Fprintf(c.out, "total items: %d\ntotal price: %s\n", snap.TotalItems, snap.TotalPrice)
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid product id %q", raw)
	}
	return id, nil
}
