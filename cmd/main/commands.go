package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"furnistore/storefront/internal/catalog"
	"furnistore/storefront/internal/container"
	"furnistore/storefront/internal/domain"
	"furnistore/storefront/internal/service"
	"furnistore/storefront/internal/session"
	"furnistore/storefront/internal/shipping"

	"github.com/spf13/pflag"
)

type cliFlags struct {
	*pflag.FlagSet

	category string
	name     string
	email    string
	password string
	oldPass  string
	confirm  string
	message  string
	shipping domain.ShippingInfo
}

func newFlagSet() *cliFlags {
	f := &cliFlags{FlagSet: pflag.NewFlagSet("storefront", pflag.ContinueOnError)}

	f.String("api-url", "", "backend base URL (default http://localhost:3000)")
	f.String("storage", "", "where to keep cart and session: memory, file, redis, postgres")
	f.String("state-file", "", "state file for the file storage driver")
	f.String("log-level", "", "log level: debug, info, warn, error")

	f.StringVarP(&f.category, "category", "c", "", `category path, e.g. "Lighting › Floor Lamps" or Lighting/Floor Lamps`)
	f.StringVar(&f.name, "name", "", "full name for signup")
	f.StringVar(&f.email, "email", "", "account email")
	f.StringVar(&f.password, "password", "", "account password, or the new password when changing or resetting it")
	f.StringVar(&f.oldPass, "old-password", "", "current password for change-password")
	f.StringVar(&f.confirm, "confirm-password", "", "repeat of the new password for change-password")
	f.StringVarP(&f.message, "message", "m", "", "message text for contact")

	f.StringVar(&f.shipping.FirstName, "first-name", "", "shipping first name")
	f.StringVar(&f.shipping.LastName, "last-name", "", "shipping last name")
	f.StringVar(&f.shipping.Phone, "phone", "", "shipping phone")
	f.StringVar(&f.shipping.Address1, "address1", "", "shipping address line 1")
	f.StringVar(&f.shipping.Address2, "address2", "", "shipping address line 2")
	f.StringVar(&f.shipping.City, "city", "", "shipping city")
	f.StringVar(&f.shipping.State, "state", "", "shipping state or region")
	f.StringVar(&f.shipping.PostalCode, "postal-code", "", "shipping postal code")
	f.StringVar(&f.shipping.Country, "country", "", "shipping country")

	f.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefront [flags] <command> [args]\n\nCommands:\n")
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(os.Stderr, "  %-16s %s\n", name, commands[name].usage)
		}
		fmt.Fprintf(os.Stderr, "\nFlags:\n%s", f.FlagUsages())
	}

	return f
}

type command struct {
	usage string
	run   func(ctx context.Context, app *container.Container, f *cliFlags, args []string) error
}

var commands = map[string]command{
	"home":       {"featured products and, when logged in, recent orders", runHome},
	"categories": {"print the category menu", runCategories},
	"products":   {"list products, narrowed with --category", runProducts},
	"product":    {"show one product: product <id>", runProduct},
	"cart":       {"cart [show | add <id> | remove <id> | set <id> <qty> | clear]", runCart},
	"login":      {"log in with --email and --password", runLogin},
	"signup":     {"create an account with --name, --email and --password", runSignup},
	"logout":     {"forget the saved session", runLogout},
	"whoami":     {"show the logged-in user", runWhoami},
	"checkout":   {"place an order for the cart using the shipping flags", runCheckout},
	"orders":     {"list your orders", runOrders},
	"shipping":   {"estimate delivery for the cart: shipping <country>", runShipping},
	"subscribe":  {"join the newsletter: subscribe <email>", runSubscribe},
	"contact":    {"message the shop with --name, --email and --message", runContact},

	"forgot-password": {"email a reset link to --email", runForgotPassword},
	"reset-password":  {"set --password using the link token: reset-password <token>", runResetPassword},
	"change-password": {"change password with --old-password, --password and --confirm-password", runChangePassword},
}

func run(ctx context.Context, app *container.Container, f *cliFlags) error {
	args := f.Args()
	if len(args) == 0 {
		f.Usage()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		f.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(ctx, app, f, args[1:])
}

// displayError unwraps errors that carry a message meant for the shopper.
func displayError(err error) string {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	var actionErr *service.ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Message
	}
	return err.Error()
}

func runHome(ctx context.Context, app *container.Container, _ *cliFlags, _ []string) error {
	dash, err := app.Service.Dashboard(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Featured")
	if err := printProducts(os.Stdout, dash.Featured, app.Config.Storefront.BlurbLength); err != nil {
		return err
	}

	if dash.OrdersErr != nil {
		fmt.Fprintln(os.Stderr, displayError(dash.OrdersErr))
	}
	if dash.Orders != nil {
		fmt.Println()
		fmt.Println("Your orders")
		return printOrders(os.Stdout, dash.Orders)
	}
	return nil
}

func runCategories(_ context.Context, app *container.Container, _ *cliFlags, _ []string) error {
	return app.Service.Tree().Walk(func(path catalog.Path, node catalog.Node) error {
		marker := ""
		if !catalog.IsLeaf(node) {
			marker = " ›"
		}
		fmt.Printf("%s%s%s\n", strings.Repeat("  ", len(path)-1), path.Last(), marker)
		return nil
	})
}

func runProducts(ctx context.Context, app *container.Container, f *cliFlags, _ []string) error {
	if err := app.Service.Refresh(ctx); err != nil {
		return err
	}
	if notice := app.Service.Notice(); notice != "" {
		fmt.Fprintf(os.Stderr, "%s, showing the last loaded list\n", notice)
	}

	path := catalog.ParsePath(f.category)
	visible := app.Service.Select(path)

	if path.IsAll() {
		fmt.Println("Showing all products")
	} else {
		fmt.Printf("Showing %s\n", path)
	}
	return printProducts(os.Stdout, visible, app.Config.Storefront.BlurbLength)
}

func runProduct(ctx context.Context, app *container.Container, _ *cliFlags, args []string) error {
	id, err := productID(args, 0)
	if err != nil {
		return err
	}

	product, err := app.Service.Product(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n€%.2f · %s\n\n%s\n", product.Title, product.Price, product.Category, product.Description)
	return nil
}

func runCart(ctx context.Context, app *container.Container, _ *cliFlags, args []string) error {
	action := "show"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "show":
	case "add":
		id, err := productID(args, 1)
		if err != nil {
			return err
		}
		item, err := app.Service.AddToCart(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (now %d in cart)\n", item.Title, item.Quantity)
	case "remove":
		id, err := productID(args, 1)
		if err != nil {
			return err
		}
		app.Cart.Remove(id)
	case "set":
		id, err := productID(args, 1)
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return errors.New("usage: cart set <id> <qty>")
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		app.Cart.SetQuantity(id, qty)
	case "clear":
		app.Cart.Clear()
	default:
		return fmt.Errorf("unknown cart action %q", action)
	}

	return printCart(os.Stdout, app.Cart.Items(), app.Cart.Total())
}

func runLogin(ctx context.Context, app *container.Container, f *cliFlags, _ []string) error {
	current, err := app.Session.Login(ctx, f.email, f.password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", current.User.Email)
	return nil
}

func runSignup(ctx context.Context, app *container.Container, f *cliFlags, _ []string) error {
	current, err := app.Session.Signup(ctx, f.name, f.email, f.password)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s\n", current.User.Email)
	return nil
}

func runLogout(_ context.Context, app *container.Container, _ *cliFlags, _ []string) error {
	app.Session.Logout()
	fmt.Println("Logged out")
	return nil
}

func runWhoami(_ context.Context, app *container.Container, _ *cliFlags, _ []string) error {
	current := app.Session.Current()
	if !current.LoggedIn() {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s (%s)\n", current.User.Email, current.User.Role)
	return nil
}

func runCheckout(ctx context.Context, app *container.Container, f *cliFlags, _ []string) error {
	info := f.shipping
	info.Email = f.email
	if info.Email == "" {
		if current := app.Session.Current(); current.LoggedIn() {
			info.Email = current.User.Email
		}
	}

	order, err := app.Service.Checkout(ctx, info)
	if err != nil {
		return err
	}
	fmt.Printf("Order placed! Order #%d\n", order.ID)
	return nil
}

func runOrders(ctx context.Context, app *container.Container, _ *cliFlags, _ []string) error {
	orders, err := app.Service.Orders(ctx)
	if err != nil {
		return err
	}
	return printOrders(os.Stdout, orders)
}

func runShipping(_ context.Context, app *container.Container, f *cliFlags, args []string) error {
	country := f.shipping.Country
	if len(args) > 0 {
		country = strings.Join(args, " ")
	}

	est := shipping.Calculate(country, app.Cart.Total())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Destination\t%s\n", est.Country)
	fmt.Fprintf(w, "Base shipping (5kg)\t€%.2f\n", est.Shipping)
	fmt.Fprintf(w, "VAT (%g%%)\t€%.2f\n", est.VATPercent, est.VAT)
	fmt.Fprintf(w, "Delivery\t€%.2f\n", est.Delivery)
	fmt.Fprintf(w, "Cart subtotal\t€%.2f\n", est.Subtotal)
	fmt.Fprintf(w, "Estimated total\t€%.2f\n", est.Total)
	return w.Flush()
}

func runSubscribe(ctx context.Context, app *container.Container, f *cliFlags, args []string) error {
	email := f.email
	if len(args) > 0 {
		email = args[0]
	}
	if err := app.Service.SubscribeNewsletter(ctx, email); err != nil {
		return err
	}
	fmt.Println("Subscribed ✓  Check your inbox!")
	return nil
}

func runContact(ctx context.Context, app *container.Container, f *cliFlags, args []string) error {
	message := f.message
	if message == "" {
		message = strings.Join(args, " ")
	}
	if err := app.Service.Contact(ctx, f.name, f.email, message); err != nil {
		return err
	}
	fmt.Println("Message sent. We'll reply soon!")
	return nil
}

func runForgotPassword(ctx context.Context, app *container.Container, f *cliFlags, args []string) error {
	email := f.email
	if len(args) > 0 {
		email = args[0]
	}
	if err := app.Session.ForgotPassword(ctx, email); err != nil {
		return err
	}
	fmt.Println("Check your e-mail for the reset link!")
	return nil
}

func runResetPassword(ctx context.Context, app *container.Container, f *cliFlags, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: reset-password <token> --password <new password>")
	}
	if err := app.Session.ResetPassword(ctx, args[0], f.password); err != nil {
		return err
	}
	fmt.Println("Password updated! Log in with the new password.")
	return nil
}

func runChangePassword(ctx context.Context, app *container.Container, f *cliFlags, _ []string) error {
	if err := app.Session.ChangePassword(ctx, f.oldPass, f.password, f.confirm); err != nil {
		return err
	}
	fmt.Println("Password updated")
	return nil
}

func productID(args []string, idx int) (int64, error) {
	if len(args) <= idx {
		return 0, errors.New("missing product id")
	}
	id, err := strconv.ParseInt(args[idx], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", args[idx])
	}
	return id, nil
}

func printProducts(out io.Writer, products []domain.Product, blurbLength int) error {
	if len(products) == 0 {
		fmt.Fprintln(out, "No products found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t€%.2f\t%s\t%s\n", p.ID, p.Title, p.Price, p.Category, p.Blurb(blurbLength))
	}
	return w.Flush()
}

func printCart(out io.Writer, items []domain.CartItem, total float64) error {
	if len(items) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%d × €%.2f\t€%.2f\n", item.ProductID, item.Title, item.Quantity, item.Price, item.Subtotal())
	}
	fmt.Fprintf(w, "\tTotal\t\t€%.2f\n", total)
	return w.Flush()
}

func printOrders(out io.Writer, orders []domain.Order) error {
	if len(orders) == 0 {
		fmt.Fprintln(out, "No orders yet.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, o := range orders {
		fmt.Fprintf(w, "#%d\t%s\t%s\t€%.2f\n", o.ID, o.CreatedAt.Format("2006-01-02"), o.Status, o.Total)
	}
	return w.Flush()
}
