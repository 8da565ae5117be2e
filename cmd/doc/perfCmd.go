package doc

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dJSON/cmd/util"
	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/client"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for document module servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfBatchSize        = 50
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the document for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "batch-size"
	perfTestCmd.Flags().Int(key, 50, util.WrapString("How many commands to buffer per batch for the batch test"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfBatchSize = viper.GetInt("batch-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for document module servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	ctx := context.Background()

	// The payloads the write tests store
	smallDoc := document.Object(map[string]document.Value{
		"name": document.String("test"),
		"n":    document.Number(1),
	})
	largeDoc := document.Object(map[string]document.Value{
		"data": document.String(strings.Repeat("x", perfLargeValueSizeKB*1024)),
	})

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	setResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("set") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("set")

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := docClient.Del(ctx, k, common.RootPath); err != nil {
					log.Printf("(set) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, err := docClient.Set(ctx, getKey(counter), common.RootPath, smallDoc); err != nil {
					log.Printf("(set) - error setting key: %v\n", err)
				}
				counter++
			}
		})
	})

	results["set"] = setResult
	printResult("set", setResult)

	setLargeResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("set-large") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("set-large")

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := docClient.Del(ctx, k, common.RootPath); err != nil {
					log.Printf("(set-large) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, err := docClient.Set(ctx, getKey(counter), common.RootPath, largeDoc); err != nil {
					log.Printf("(set-large) - error setting key: %v\n", err)
				}
				counter++
			}
		})
	})

	results["set-large"] = setLargeResult
	printResult("set-large", setLargeResult)

	getResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("get")

		// set keys
		iter(func(k string) {
			if _, err := docClient.Set(ctx, k, common.RootPath, smallDoc); err != nil {
				log.Printf("(get) - error setting key: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := docClient.Del(ctx, k, common.RootPath); err != nil {
					log.Printf("(get) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, err := docClient.Get(ctx, getKey(counter)); err != nil {
					log.Printf("(get) - error getting key: %v\n", err)
				}
				counter++
			}
		})
	})

	results["get"] = getResult
	printResult("get", getResult)

	getPathResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get-path") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("get-path")

		// set keys
		iter(func(k string) {
			if _, err := docClient.Set(ctx, k, common.RootPath, smallDoc); err != nil {
				log.Printf("(get-path) - error setting key: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := docClient.Del(ctx, k, common.RootPath); err != nil {
					log.Printf("(get-path) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, err := docClient.Get(ctx, getKey(counter), "$.n"); err != nil {
					log.Printf("(get-path) - error getting path: %v\n", err)
				}
				counter++
			}
		})
	})

	results["get-path"] = getPathResult
	printResult("get-path", getPathResult)

	delResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("del") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("del")

		// set keys
		iter(func(k string) {
			if _, err := docClient.Set(ctx, k, common.RootPath, smallDoc); err != nil {
				log.Printf("(del) - error setting key: %v\n", err)
			}
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, err := docClient.Del(ctx, getKey(counter), common.RootPath); err != nil {
					log.Printf("(del) - error deleting key: %v\n", err)
				}
				counter++
			}
		})
	})

	results["del"] = delResult
	printResult("del", delResult)

	mgetResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("mget") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("mget")

		// set keys
		iter(func(k string) {
			if _, err := docClient.Set(ctx, k, common.RootPath, smallDoc); err != nil {
				log.Printf("(mget) - error setting key: %v\n", err)
			}
		})

		// every op fetches one path from ten keys
		keys := make([]string, 10)
		for i := range keys {
			keys[i] = getKey(i)
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := docClient.Del(ctx, k, common.RootPath); err != nil {
					log.Printf("(mget) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				if _, err := docClient.MGet(ctx, "$.n", keys...); err != nil {
					log.Printf("(mget) - error fetching keys: %v\n", err)
				}
			}
		})
	})

	results["mget"] = mgetResult
	printResult("mget", mgetResult)

	batchResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("batch") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("batch")

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := docClient.Del(ctx, k, common.RootPath); err != nil {
					log.Printf("(batch) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				p := docClient.Pipeline()
				for i := 0; i < perfBatchSize; i++ {
					p.Set(getKey(counter+i), common.RootPath, smallDoc)
				}
				if _, err := p.Execute(ctx); err != nil {
					log.Printf("(batch) - error executing batch: %v\n", err)
				}
				counter += perfBatchSize
			}
		})
	})

	results["batch"] = batchResult
	printResult("batch", batchResult)

	// Dump the client side metrics
	fmt.Println()
	fmt.Println("Client metrics:")
	client.WriteMetrics(os.Stdout)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoint", "TimeoutSec", "RetryCount", "PoolSize", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count", "BatchSize",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Endpoint,
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.PoolSize),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
			strconv.Itoa(perfBatchSize),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
