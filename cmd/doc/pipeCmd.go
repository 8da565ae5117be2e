package doc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dJSON/cmd/util"
	"github.com/ValentinKolb/dJSON/rpc/client"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/spf13/cobra"
)

var (
	pipeCmd = &cobra.Command{
		Use:   "pipe",
		Short: "Reads commands from stdin and sends them as one batch",
		Long: `Reads one command per line from stdin, buffers them all and sends
them in a single round trip. Lines starting with # are skipped. Unknown
verbs are sent verbatim as raw commands. The replies are printed in
command order.

Example:
  echo 'set user:1 $ {"name":"karl"}
  get user:1 $.name' | djson doc pipe`,
		RunE: runPipe,
	}
)

func init() {
	// add flags
	pipeCmd.Flags().Bool("tx", false, util.WrapString("Apply the batch atomically"))
}

func runPipe(cmd *cobra.Command, _ []string) error {
	p := docClient.Pipeline()
	if tx, _ := cmd.Flags().GetBool("tx"); tx {
		p = docClient.TxPipeline()
	}

	// Buffer one command per stdin line
	scanner := bufio.NewScanner(os.Stdin)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := enqueueLine(p, fields); err != nil {
			p.Discard()
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if p.Len() == 0 {
		fmt.Println("nothing to send")
		return nil
	}

	// One round trip for the whole batch
	results, err := p.Execute(cmd.Context())
	if err != nil {
		return err
	}
	for i, result := range results {
		fmt.Printf("%d) %v\n", i+1, result)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// enqueueLine buffers one parsed stdin line into the batch
func enqueueLine(p *client.Pipeline, fields []string) error {
	verb, args := strings.ToLower(fields[0]), fields[1:]

	// need checks the minimum argument count for a verb
	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s needs at least %d argument(s)", verb, n)
		}
		return nil
	}

	switch verb {
	case "set":
		if err := need(3); err != nil {
			return err
		}
		v, err := parseValue(args[2])
		if err != nil {
			return err
		}
		var opts []client.SetOption
		for _, extra := range args[3:] {
			switch strings.ToLower(extra) {
			case "nx":
				opts = append(opts, client.SetNX())
			case "xx":
				opts = append(opts, client.SetXX())
			default:
				return fmt.Errorf("unknown set option %q", extra)
			}
		}
		p.Set(args[0], args[1], v, opts...)

	case "get":
		if err := need(1); err != nil {
			return err
		}
		p.Get(args[0], args[1:]...)

	case "mget":
		if err := need(2); err != nil {
			return err
		}
		p.MGet(args[0], args[1:]...)

	case "del", "forget", "clear":
		if err := need(1); err != nil {
			return err
		}
		path := common.RootPath
		if len(args) > 1 {
			path = args[1]
		}
		switch verb {
		case "del":
			p.Del(args[0], path)
		case "forget":
			p.Forget(args[0], path)
		case "clear":
			p.Clear(args[0], path)
		}

	case "numincrby", "nummultby":
		if err := need(3); err != nil {
			return err
		}
		operand, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("%q must be a number: %w", args[2], err)
		}
		if verb == "numincrby" {
			p.NumIncrBy(args[0], args[1], operand)
		} else {
			p.NumMultBy(args[0], args[1], operand)
		}

	case "toggle":
		if err := need(2); err != nil {
			return err
		}
		p.Toggle(args[0], args[1])

	case "strappend":
		if err := need(3); err != nil {
			return err
		}
		p.StrAppend(args[0], args[1], args[2])

	case "strlen":
		if err := need(2); err != nil {
			return err
		}
		p.StrLen(args[0], args[1])

	case "arrappend":
		if err := need(3); err != nil {
			return err
		}
		vs, err := parseValues(args[2:])
		if err != nil {
			return err
		}
		p.ArrAppend(args[0], args[1], vs...)

	case "arrindex":
		if err := need(3); err != nil {
			return err
		}
		v, err := parseValue(args[2])
		if err != nil {
			return err
		}
		startstop, err := parseInts(args[3:])
		if err != nil {
			return err
		}
		p.ArrIndex(args[0], args[1], v, startstop...)

	case "arrinsert":
		if err := need(4); err != nil {
			return err
		}
		index, err := parseInts(args[2:3])
		if err != nil {
			return err
		}
		vs, err := parseValues(args[3:])
		if err != nil {
			return err
		}
		p.ArrInsert(args[0], args[1], index[0], vs...)

	case "arrlen":
		if err := need(2); err != nil {
			return err
		}
		p.ArrLen(args[0], args[1])

	case "arrpop":
		if err := need(2); err != nil {
			return err
		}
		index := int64(-1)
		if len(args) > 2 {
			ns, err := parseInts(args[2:3])
			if err != nil {
				return err
			}
			index = ns[0]
		}
		p.ArrPop(args[0], args[1], index)

	case "arrtrim":
		if err := need(4); err != nil {
			return err
		}
		ns, err := parseInts(args[2:4])
		if err != nil {
			return err
		}
		p.ArrTrim(args[0], args[1], ns[0], ns[1])

	case "objkeys":
		if err := need(2); err != nil {
			return err
		}
		p.ObjKeys(args[0], args[1])

	case "objlen":
		if err := need(2); err != nil {
			return err
		}
		p.ObjLen(args[0], args[1])

	case "resp":
		if err := need(1); err != nil {
			return err
		}
		p.Resp(args[0], args[1:]...)

	case "debug-memory":
		if err := need(1); err != nil {
			return err
		}
		p.DebugMemory(args[0], args[1:]...)

	default:
		// Unknown verbs travel verbatim as raw commands
		raw := make([]any, len(args))
		for i, arg := range args {
			raw[i] = arg
		}
		p.Enqueue(common.CommandName(fields[0]), raw...)
	}

	return nil
}
