package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tournevent/transsmart/internal/documents"
	"github.com/tournevent/transsmart/pkg/transsmart"
	"go.uber.org/zap"
)

var (
	callQuery map[string]string
	callBody  string

	bookAction string
	bookOut    string
)

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List the provider operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printOperations(cmd.OutOrStdout(), transsmart.DefaultCatalog())
	},
}

var callCmd = &cobra.Command{
	Use:   "call <operation> [args...]",
	Short: "Invoke one provider operation and print the JSON response",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCall,
}

var bookCmd = &cobra.Command{
	Use:   "book <file>",
	Short: "Book the shipments in a JSON file and write the returned documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runBook,
}

var refdataCmd = &cobra.Command{
	Use:   "refdata [kind...]",
	Short: "Fetch reference data lists in parallel",
	RunE:  runRefdata,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print when the token expires",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	callCmd.Flags().StringToStringVarP(&callQuery, "query", "q", nil, "query parameter as key=value, repeatable")
	callCmd.Flags().StringVarP(&callBody, "body", "b", "", "JSON request body file, - for stdin")

	bookCmd.Flags().StringVar(&bookAction, "action", transsmart.ActionBook, "booking action, BOOK or PRINT")
	bookCmd.Flags().StringVar(&bookOut, "out", ".", "directory for package documents")

	rootCmd.AddCommand(operationsCmd, callCmd, bookCmd, refdataCmd, loginCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	call := transsmart.Call{Args: args[1:], Query: callQuery}
	if callBody != "" {
		body, err := readJSON(callBody, cmd.InOrStdin())
		if err != nil {
			return err
		}
		call.Body = body
	}

	a, err := newApp(cmd.Context(), "stderr", nil)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.client.Invoke(cmd.Context(), transsmart.Operation(args[0]), call)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func runBook(cmd *cobra.Command, args []string) error {
	body, err := readJSON(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), "stderr", nil)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.client.BookShipment(cmd.Context(), body, strings.ToUpper(bookAction))
	if err != nil {
		return err
	}

	docs, err := documents.Extract(result)
	if errors.Is(err, documents.ErrNoDocuments) {
		return printJSON(cmd.OutOrStdout(), result)
	}
	if err != nil {
		return err
	}

	paths, err := documents.Write(bookOut, docs)
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return err
}

func runRefdata(cmd *cobra.Command, args []string) error {
	kinds := make([]transsmart.ReferenceKind, 0, len(args))
	for _, arg := range args {
		kinds = append(kinds, transsmart.ReferenceKind(arg))
	}

	a, err := newApp(cmd.Context(), "stderr", nil)
	if err != nil {
		return err
	}
	defer a.close()

	results, errs := a.client.FetchReferenceData(cmd.Context(), kinds...)
	for _, e := range errs {
		a.logger.Error("Failed to fetch reference data", zap.Error(e))
	}
	if err := printJSON(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d reference data lists failed", len(errs), len(errs)+len(results))
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), "stderr", nil)
	if err != nil {
		return err
	}
	defer a.close()

	token, err := a.client.Login(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged in to %s, token expires %s\n",
		a.cfg.Account, token.ExpiresAt().Format(time.RFC3339))
	return nil
}

func printOperations(w io.Writer, catalog *transsmart.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tMETHOD\tPATH\tARGS\tQUERY\tBODY")
	for _, e := range catalog.All() {
		names := make([]string, 0, len(e.Args))
		for _, arg := range e.Args {
			names = append(names, arg.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n",
			e.Operation, e.Method, e.Path, strings.Join(names, ","), e.Query, e.Body)
	}
	return tw.Flush()
}

// readJSON decodes the JSON document in file, or stdin when file is "-".
func readJSON(file string, stdin io.Reader) (interface{}, error) {
	var r io.Reader
	if file == "-" {
		r = stdin
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening body: %w", err)
		}
		defer f.Close()
		r = f
	}

	var body interface{}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	return body, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
