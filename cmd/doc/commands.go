package doc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ValentinKolb/dJSON/cmd/util"
	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/client"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [path] [json]",
		Short: "Sets the value at a path inside a document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[2])
			if err != nil {
				return err
			}

			// Collect the write condition flags
			nx, _ := cmd.Flags().GetBool("nx")
			xx, _ := cmd.Flags().GetBool("xx")
			if nx && xx {
				return fmt.Errorf("nx and xx exclude each other")
			}
			var opts []client.SetOption
			if nx {
				opts = append(opts, client.SetNX())
			}
			if xx {
				opts = append(opts, client.SetXX())
			}

			if ok, err := docClient.Set(cmd.Context(), args[0], args[1], v, opts...); err != nil {
				return err
			} else if ok {
				fmt.Println("set successfully")
			} else {
				fmt.Println("condition not met")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key] [path...]",
		Short: "Reads a document or the values at the given paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.Get(cmd.Context(), args[0], args[1:]...); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	mgetCmd = &cobra.Command{
		Use:   "mget [path] [key...]",
		Short: "Reads the value at one path from several keys",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := docClient.MGet(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			for i, v := range values {
				fmt.Printf("%s: %v\n", args[1+i], v)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key] [path]",
		Short: "Removes the value at a path, the whole document by default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n, err := docClient.Del(cmd.Context(), args[0], pathArg(args)); err != nil {
				return err
			} else {
				fmt.Printf("removed %d\n", n)
			}
			return nil
		},
	}
	forgetCmd = &cobra.Command{
		Use:   "forget [key] [path]",
		Short: "Alias for del",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n, err := docClient.Forget(cmd.Context(), args[0], pathArg(args)); err != nil {
				return err
			} else {
				fmt.Printf("removed %d\n", n)
			}
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear [key] [path]",
		Short: "Empties containers and zeroes numbers at a path",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n, err := docClient.Clear(cmd.Context(), args[0], pathArg(args)); err != nil {
				return err
			} else {
				fmt.Printf("cleared %d\n", n)
			}
			return nil
		},
	}
	numIncrByCmd = &cobra.Command{
		Use:   "numincrby [key] [path] [delta]",
		Short: "Increments the number at a path",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("delta must be a number: %w", err)
			}
			if v, err := docClient.NumIncrBy(cmd.Context(), args[0], args[1], delta); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	numMultByCmd = &cobra.Command{
		Use:   "nummultby [key] [path] [factor]",
		Short: "Multiplies the number at a path",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			factor, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("factor must be a number: %w", err)
			}
			if v, err := docClient.NumMultBy(cmd.Context(), args[0], args[1], factor); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	toggleCmd = &cobra.Command{
		Use:   "toggle [key] [path]",
		Short: "Flips the boolean at a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.Toggle(cmd.Context(), args[0], args[1]); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	strAppendCmd = &cobra.Command{
		Use:   "strappend [key] [path] [string]",
		Short: "Appends to the string at a path",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.StrAppend(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	strLenCmd = &cobra.Command{
		Use:   "strlen [key] [path]",
		Short: "Reads the length of the string at a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.StrLen(cmd.Context(), args[0], args[1]); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	arrAppendCmd = &cobra.Command{
		Use:   "arrappend [key] [path] [json...]",
		Short: "Appends values to the array at a path",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			vs, err := parseValues(args[2:])
			if err != nil {
				return err
			}
			if v, err := docClient.ArrAppend(cmd.Context(), args[0], args[1], vs...); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	arrIndexCmd = &cobra.Command{
		Use:   "arrindex [key] [path] [json] [start] [stop]",
		Short: "Searches the array at a path for a value",
		Args:  cobra.RangeArgs(3, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[2])
			if err != nil {
				return err
			}
			startstop, err := parseInts(args[3:])
			if err != nil {
				return err
			}
			if v, err := docClient.ArrIndex(cmd.Context(), args[0], args[1], v, startstop...); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	arrInsertCmd = &cobra.Command{
		Use:   "arrinsert [key] [path] [index] [json...]",
		Short: "Inserts values into the array at a path",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			vs, err := parseValues(args[3:])
			if err != nil {
				return err
			}
			if v, err := docClient.ArrInsert(cmd.Context(), args[0], args[1], index, vs...); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	arrLenCmd = &cobra.Command{
		Use:   "arrlen [key] [path]",
		Short: "Reads the length of the array at a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.ArrLen(cmd.Context(), args[0], args[1]); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	arrPopCmd = &cobra.Command{
		Use:   "arrpop [key] [path] [index]",
		Short: "Removes and returns the element at an index, the last by default",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := int64(-1)
			if len(args) == 3 {
				var err error
				if index, err = strconv.ParseInt(args[2], 10, 64); err != nil {
					return fmt.Errorf("index must be a number: %w", err)
				}
			}
			if v, err := docClient.ArrPop(cmd.Context(), args[0], args[1], index); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	arrTrimCmd = &cobra.Command{
		Use:   "arrtrim [key] [path] [start] [stop]",
		Short: "Trims the array at a path to an inclusive range",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("start must be a number: %w", err)
			}
			stop, err := strconv.ParseInt(args[3], 10, 64)
			if err != nil {
				return fmt.Errorf("stop must be a number: %w", err)
			}
			if v, err := docClient.ArrTrim(cmd.Context(), args[0], args[1], start, stop); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	objKeysCmd = &cobra.Command{
		Use:   "objkeys [key] [path]",
		Short: "Reads the field names of the object at a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.ObjKeys(cmd.Context(), args[0], args[1]); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	objLenCmd = &cobra.Command{
		Use:   "objlen [key] [path]",
		Short: "Reads the field count of the object at a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.ObjLen(cmd.Context(), args[0], args[1]); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	respCmd = &cobra.Command{
		Use:   "resp [key] [path...]",
		Short: "Reads the raw protocol form of the value at a path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.Resp(cmd.Context(), args[0], args[1:]...); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
	debugMemoryCmd = &cobra.Command{
		Use:   "debug-memory [key] [path...]",
		Short: "Reports the memory footprint of the value at a path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, err := docClient.DebugMemory(cmd.Context(), args[0], args[1:]...); err != nil {
				return err
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
)

func init() {
	// Add the write condition flags
	setCmd.Flags().Bool("nx", false, util.WrapString("Only set if the path does not exist yet"))
	setCmd.Flags().Bool("xx", false, util.WrapString("Only set if the path already exists"))
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseValue parses a JSON argument into a canonical value. Malformed input
// is rejected instead of falling back to a verbatim string.
func parseValue(text string) (document.Value, error) {
	var native any
	if err := json.Unmarshal([]byte(text), &native); err != nil {
		return document.Null(), fmt.Errorf("invalid JSON %q: %w", text, err)
	}
	return document.FromNative(native)
}

// parseValues parses a list of JSON arguments
func parseValues(texts []string) ([]document.Value, error) {
	values := make([]document.Value, len(texts))
	for i, text := range texts {
		v, err := parseValue(text)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// parseInts parses a list of integer arguments
func parseInts(texts []string) ([]int64, error) {
	ns := make([]int64, len(texts))
	for i, text := range texts {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q must be a number: %w", text, err)
		}
		ns[i] = n
	}
	return ns, nil
}

// pathArg returns the optional second argument, the root path by default
func pathArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return common.RootPath
}
