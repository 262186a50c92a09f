package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fcoo/permalink/internal/errors"
	"github.com/fcoo/permalink/pkg/params"
	"github.com/fcoo/permalink/pkg/urlcodec"
)

func encodeCmd() *cobra.Command {
	var hash bool

	cmd := &cobra.Command{
		Use:   "encode key=value...",
		Short: "Encode parameters as a URL fragment",
		Long: `Encode key=value pairs the way the control writes them to the URL.

Keys are sorted and values escaped. A pair with an empty key is an error.

Examples:
  permalink encode zoom=6 lat=55.676 lon=12.568
  permalink encode --hash layers=sst,wind`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePairs(args)
			if err != nil {
				return err
			}
			fragment := urlcodec.Stringify(p)
			if hash {
				fragment = "#" + fragment
			}
			fmt.Fprintln(cmd.OutOrStdout(), fragment)
			return nil
		},
	}

	cmd.Flags().BoolVar(&hash, "hash", false, "Prefix the output with #")

	return cmd
}

func decodeCmd() *cobra.Command {
	var (
		raw     bool
		options = urlcodec.DefaultParseOptions
	)

	cmd := &cobra.Command{
		Use:   "decode <fragment|url>",
		Short: "Decode a URL fragment into JSON",
		Long: `Decode a fragment (or a full URL) into a JSON object.

Values are coerced the way the control does before notifying
extensions: "true"/"false" become booleans, numeric strings numbers,
and strings starting with { or [ JSON.

Examples:
  permalink decode '#zoom=6&lat=55.676&lon=12.568'
  permalink decode --raw 'https://maps.example.com/?lang=da#zoom=6'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fragment := args[0]
			if _, after, ok := strings.Cut(fragment, "#"); ok {
				fragment = after
			}

			p := urlcodec.ParseQuery(fragment)
			if !raw {
				urlcodec.Coerce(p, options)
			}

			data, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Keep every value as a string")
	cmd.Flags().BoolVar(&options.ConvertBoolean, "convert-boolean", true, "Convert true/false to booleans")
	cmd.Flags().BoolVar(&options.ConvertNumber, "convert-number", true, "Convert numeric strings to numbers")
	cmd.Flags().BoolVar(&options.ConvertJSON, "convert-json", true, "Decode values starting with { or [")

	return cmd
}

// parsePairs turns key=value arguments into parameters.
func parsePairs(args []string) (params.Params, error) {
	p := params.New()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.New("E170").
				WithDetail(fmt.Sprintf("%q is not a key=value pair", arg)).
				WithExample("permalink encode zoom=6 lat=55.676")
		}
		p[key] = value
	}
	return p, nil
}
