package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/salqa/sal/cli/pkg/config"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// Out receives everything this package prints.
var Out io.Writer = color.Output

// SetOutput redirects output and returns a func restoring the previous writer.
func SetOutput(w io.Writer) func() {
	prev := Out
	Out = w
	return func() { Out = prev }
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Field is one labelled value of a record. Records print in field order.
type Field struct {
	Key   string
	Value interface{}
}

// Print writes data as indented JSON, with an optional title in text mode.
func Print(title string, data interface{}) error {
	if title != "" && GetOutputFormat() != FormatJSON {
		fmt.Fprintf(Out, "%s:\n", title)
	}
	return printJSON(data)
}

// PrintList writes items as JSON in json mode and as a table of rows otherwise.
func PrintList(items interface{}, headers []string, rows [][]string) error {
	if GetOutputFormat() == FormatJSON {
		return printJSON(items)
	}
	printTable(headers, rows)
	return nil
}

// PrintRecord writes a single record. raw is what json mode prints.
func PrintRecord(title string, raw interface{}, fields []Field) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return printJSON(raw)
	case FormatTable:
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Key, fmt.Sprintf("%v", f.Value)})
		}
		printTable([]string{"Field", "Value"}, rows)
		return nil
	default:
		if title != "" {
			color.New(color.Bold, color.Underline).Fprintln(Out, title)
		}
		bold := color.New(color.Bold)
		for _, f := range fields {
			bold.Fprint(Out, f.Key+": ")
			fmt.Fprintf(Out, "%v\n", f.Value)
		}
		return nil
	}
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Out, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Out, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Out, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Out, "Warning: "+msg+"\n", args...)
}

// Println writes a plain line.
func Println(args ...interface{}) {
	fmt.Fprintln(Out, args...)
}

func printJSON(data interface{}) error {
	pretty, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, pretty)
	return nil
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}

	w.Flush()
}

// FormatAsJSON converts data to a compact JSON string
func FormatAsJSON(data interface{}) (string, error) {
	b, err := json.ConfigCompatibleWithStandardLibrary.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatAsPrettyJSON converts data to an indented JSON string
func FormatAsPrettyJSON(data interface{}) (string, error) {
	b, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
