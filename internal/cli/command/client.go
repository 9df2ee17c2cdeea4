package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/trakjobs/trakjobs-go/internal/cli/output"
	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/core/listing"
	"github.com/trakjobs/trakjobs-go/internal/core/service"
)

// ClientCommand returns the client subcommand group.
func ClientCommand() *cli.Command {
	return &cli.Command{
		Name:    "client",
		Aliases: []string{"clients"},
		Usage:   "Manage the clients of your vendor",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List one page of clients",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: domain.DefaultPage, Usage: "Page number"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Page size (default list.page_size)"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Free-text filter"},
					&cli.StringFlag{Name: "status", Usage: "Filter by status: active, inactive"},
					&cli.StringFlag{Name: "category", Usage: "Filter by client category"},
					&cli.StringFlag{Name: "sort", Usage: "Sort field, e.g. businessName"},
					&cli.StringFlag{Name: "order", Value: string(domain.SortAsc), Usage: "Sort order: asc, desc"},
				},
				Action: clientList,
			},
			{
				Name:      "get",
				Usage:     "Show one client",
				ArgsUsage: "CLIENT_ID",
				Action:    clientGet,
			},
			{
				Name:   "create",
				Usage:  "Add a client",
				Flags:  clientFlags(),
				Action: clientCreate,
			},
			{
				Name:      "update",
				Usage:     "Change a client; unset flags keep their current value",
				ArgsUsage: "CLIENT_ID",
				Flags:     clientFlags(),
				Action:    clientUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a client",
				ArgsUsage: "CLIENT_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: clientDelete,
			},
			{
				Name:      "search",
				Usage:     "Look clients up by free text",
				ArgsUsage: "QUERY",
				Action:    clientSearch,
			},
			{
				Name:      "logo",
				Usage:     "Upload a client logo",
				ArgsUsage: "CLIENT_ID FILE",
				Action:    clientLogo,
			},
		},
	}
}

// clientEnv returns the Env of a client command, which needs a session.
func clientEnv(c *cli.Context) (*Env, error) {
	e, err := env(c)
	if err != nil {
		return nil, err
	}
	if err := e.requireLogin(); err != nil {
		return nil, err
	}
	e.Enter("/clients")
	return e, nil
}

// requireArg returns positional argument n or a missing-argument error.
func requireArg(c *cli.Context, n int, name string) (string, error) {
	v := strings.TrimSpace(c.Args().Get(n))
	if v == "" {
		return "", domain.ErrMissingArgument.WithDetails(name)
	}
	return v, nil
}

func clientList(c *cli.Context) error {
	e, err := clientEnv(c)
	if err != nil {
		return err
	}

	limit := e.Config.List.PageSize
	if c.IsSet("limit") {
		limit = c.Int("limit")
	}
	q := domain.DefaultQueryOptions(limit).WithPage(c.Int("page"))
	if term := c.String("search"); term != "" {
		q = q.WithSearch(term)
	}
	for _, name := range []string{domain.FilterStatus, domain.FilterCategory} {
		if v := c.String(name); v != "" {
			if q, err = q.WithFilter(name, v); err != nil {
				return err
			}
		}
	}
	if by := c.String("sort"); by != "" {
		q = q.WithSort(by, domain.ParseSortOrder(c.String("order")))
	}

	page, err := e.Clients.List(c.Context, q.Normalized())
	if err != nil {
		return err
	}
	if !e.Printer.Interactive() {
		return e.Printer.Print(page)
	}
	if err := e.Printer.Print(page.Items); err != nil {
		return err
	}
	p := page.Pagination
	fmt.Fprintf(e.Printer.Out, "\nPage %d of %d, %d clients\n", p.CurrentPage, p.TotalPages, p.TotalItems)
	return nil
}

func clientGet(c *cli.Context) error {
	e, err := clientEnv(c)
	if err != nil {
		return err
	}
	id, err := requireArg(c, 0, "CLIENT_ID")
	if err != nil {
		return err
	}

	detail := listing.NewDetailController(e.Clients)
	if err := detail.Load(c.Context, id); err != nil {
		return err
	}
	return e.Printer.Print(detail.State().Client)
}

// clientField binds one CLI flag to a ClientInput field.
type clientField struct {
	flag  string
	usage string
	ptr   func(*domain.ClientInput) *string
}

var clientFields = []clientField{
	{"business-name", "Business name (required)", func(in *domain.ClientInput) *string { return &in.BusinessName }},
	{"business-type", "Business type (required)", func(in *domain.ClientInput) *string { return &in.BusinessType }},
	{"industry", "Industry", func(in *domain.ClientInput) *string { return &in.Industry }},
	{"registration-number", "Business registration number", func(in *domain.ClientInput) *string { return &in.BusinessRegistrationNumber }},
	{"contact-name", "Contact person name (required)", func(in *domain.ClientInput) *string { return &in.ContactPersonName }},
	{"designation", "Contact designation or role", func(in *domain.ClientInput) *string { return &in.DesignationRole }},
	{"email", "Email address", func(in *domain.ClientInput) *string { return &in.EmailAddress }},
	{"mobile", "Mobile number", func(in *domain.ClientInput) *string { return &in.MobileNumber }},
	{"alternate-mobile", "Alternate mobile number", func(in *domain.ClientInput) *string { return &in.AlternateMobileNumber }},
	{"address1", "Address line 1 (required)", func(in *domain.ClientInput) *string { return &in.AddressLine1 }},
	{"address2", "Address line 2", func(in *domain.ClientInput) *string { return &in.AddressLine2 }},
	{"city", "City", func(in *domain.ClientInput) *string { return &in.City }},
	{"state", "State", func(in *domain.ClientInput) *string { return &in.State }},
	{"country", "Country", func(in *domain.ClientInput) *string { return &in.Country }},
	{"zip", "PIN or ZIP code", func(in *domain.ClientInput) *string { return &in.PinZipcode }},
	{"billing-name", "Billing name", func(in *domain.ClientInput) *string { return &in.BillingName }},
	{"payment-term", "Payment term", func(in *domain.ClientInput) *string { return &in.PaymentTerm }},
	{"currency", "Preferred currency", func(in *domain.ClientInput) *string { return &in.PreferredCurrency }},
	{"tax", "Tax percentage", func(in *domain.ClientInput) *string { return &in.TaxPercentage }},
	{"website", "Website URL", func(in *domain.ClientInput) *string { return &in.WebsiteURL }},
	{"category", "Client category", func(in *domain.ClientInput) *string { return &in.ClientCategory }},
	{"notes", "Notes or remarks", func(in *domain.ClientInput) *string { return &in.NotesRemark }},
	{"status", "Client status: active, inactive", func(in *domain.ClientInput) *string { return &in.ClientStatus }},
}

const sameAsBillingFlag = "same-as-billing"

func clientFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(clientFields)+1)
	for _, f := range clientFields {
		flags = append(flags, &cli.StringFlag{Name: f.flag, Usage: f.usage})
	}
	return append(flags, &cli.BoolFlag{
		Name:  sameAsBillingFlag,
		Usage: "Billing address equals the client address",
	})
}

// applyClientFlags copies the flags that were set onto in.
func applyClientFlags(c *cli.Context, in *domain.ClientInput) {
	for _, f := range clientFields {
		if c.IsSet(f.flag) {
			*f.ptr(in) = c.String(f.flag)
		}
	}
	if c.IsSet(sameAsBillingFlag) {
		in.SameAsBillingAddress = c.Bool(sameAsBillingFlag)
	}
}

// inputFromClient returns the editable fields of an existing client.
func inputFromClient(cl *domain.Client) domain.ClientInput {
	in := domain.ClientInput{
		BusinessName:               cl.BusinessName,
		BusinessType:               cl.BusinessType,
		Industry:                   cl.Industry,
		BusinessRegistrationNumber: cl.BusinessRegistrationNumber,
		ContactPersonName:          cl.ContactPersonName,
		DesignationRole:            cl.DesignationRole,
		EmailAddress:               cl.EmailAddress,
		MobileNumber:               cl.MobileNumber,
		AlternateMobileNumber:      cl.AlternateMobileNumber,
		AddressLine1:               cl.AddressLine1,
		AddressLine2:               cl.AddressLine2,
		City:                       cl.City,
		State:                      cl.State,
		Country:                    cl.Country,
		PinZipcode:                 cl.PinZipcode,
		BillingName:                cl.BillingName,
		SameAsBillingAddress:       cl.SameAsBillingAddress,
		PaymentTerm:                cl.PaymentTerm,
		PreferredCurrency:          cl.PreferredCurrency,
		WebsiteURL:                 cl.WebsiteURL,
		ClientCategory:             cl.ClientCategory,
		NotesRemark:                cl.NotesRemark,
		ClientStatus:               cl.Status,
	}
	if cl.TaxPercentage != 0 {
		in.TaxPercentage = strconv.FormatFloat(cl.TaxPercentage, 'f', -1, 64)
	}
	return in
}

func clientCreate(c *cli.Context) error {
	e, err := clientEnv(c)
	if err != nil {
		return err
	}

	var in domain.ClientInput
	applyClientFlags(c, &in)
	if err := in.Validate(); err != nil {
		return apierr.Normalize(err)
	}

	detail := listing.NewDetailController(e.Clients)
	res, err := withSpinner(e.Printer, "Creating client", func() (*service.MutationResult, error) {
		return detail.Create(c.Context, in)
	})
	if err != nil {
		return err
	}
	return printMutation(e.Printer, res)
}

func clientUpdate(c *cli.Context) error {
	e, err := clientEnv(c)
	if err != nil {
		return err
	}
	id, err := requireArg(c, 0, "CLIENT_ID")
	if err != nil {
		return err
	}

	detail := listing.NewDetailController(e.Clients)
	if err := detail.Load(c.Context, id); err != nil {
		return err
	}
	in := inputFromClient(detail.State().Client)
	applyClientFlags(c, &in)
	if err := in.Validate(); err != nil {
		return apierr.Normalize(err)
	}

	res, err := withSpinner(e.Printer, "Updating client", func() (*service.MutationResult, error) {
		return detail.Update(c.Context, id, in)
	})
	if err != nil {
		return err
	}
	return printMutation(e.Printer, res)
}

func clientDelete(c *cli.Context) error {
	e, err := clientEnv(c)
	if err != nil {
		return err
	}
	id, err := requireArg(c, 0, "CLIENT_ID")
	if err != nil {
		return err
	}

	if !c.Bool("force") {
		answer, err := prompt(c, fmt.Sprintf("Delete client %s? [y/N]: ", id))
		if err != nil {
			return err
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return e.Printer.Message("Cancelled")
		}
	}

	res, err := listing.NewDetailController(e.Clients).Delete(c.Context, id)
	if err != nil {
		return err
	}
	return e.Printer.Message(res.Message)
}

func clientSearch(c *cli.Context) error {
	e, err := clientEnv(c)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return domain.ErrMissingArgument.WithDetails("QUERY")
	}

	results, err := e.Clients.Search(c.Context, query)
	if err != nil {
		return err
	}
	if len(results) == 0 && e.Printer.Interactive() {
		return e.Printer.Message("No clients found.")
	}
	return e.Printer.Print(results)
}

func clientLogo(c *cli.Context) error {
	e, err := clientEnv(c)
	if err != nil {
		return err
	}
	id, err := requireArg(c, 0, "CLIENT_ID")
	if err != nil {
		return err
	}
	path, err := requireArg(c, 1, "FILE")
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fieldError("logo", err.Error())
	}
	defer f.Close()

	var body io.Reader = f
	var bar *output.ProgressBar
	if e.Printer.Interactive() {
		var size int64
		if fi, err := f.Stat(); err == nil {
			size = fi.Size()
		}
		bar = output.NewProgressBar(e.Printer.Err, "Uploading "+filepath.Base(path), size)
		body = bar.Reader(f)
	}

	res, err := e.Clients.UploadLogo(c.Context, id, filepath.Base(path), body)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if !e.Printer.Interactive() {
		return e.Printer.Print(map[string]string{"message": res.Message, "logoUrl": res.LogoURL})
	}
	msg := res.Message
	if res.LogoURL != "" {
		msg += ": " + res.LogoURL
	}
	return e.Printer.Message(msg)
}

// withSpinner runs fn behind a spinner on interactive output.
func withSpinner(p *output.Printer, msg string, fn func() (*service.MutationResult, error)) (*service.MutationResult, error) {
	if !p.Interactive() {
		return fn()
	}
	s := output.NewSpinner(p.Err, msg)
	s.Start()
	res, err := fn()
	if err != nil {
		s.Fail(msg + " failed")
		return nil, err
	}
	s.Stop()
	return res, nil
}

// printMutation prints the server message and, when returned, the client.
func printMutation(p *output.Printer, res *service.MutationResult) error {
	if !p.Interactive() {
		return p.Print(map[string]any{"message": res.Message, "client": res.Client})
	}
	if err := p.Message(res.Message); err != nil {
		return err
	}
	if res.Client == nil {
		return nil
	}
	return p.Print(res.Client)
}
