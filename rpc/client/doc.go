// Package client implements the typed client for the JSON document module.
// It turns method calls into module commands, sends them through a
// transport and decodes every reply into a canonical document.Value.
//
// The package focuses on:
//   - A typed method per module command, immediate and batched
//   - An immutable command-to-transform table built once per client
//   - Decoding heterogeneous wire replies into canonical values
//
// Key Components:
//
//   - NewDocumentClient: Factory function that creates a client for the
//     JSON document module. The client registers its response transforms
//     with the transport before connecting, a registration failure aborts
//     construction with a ConstructionError.
//
//   - Pipeline / TxPipeline: Batch builders that buffer commands locally
//     and send them in one round trip. Replies come back in enqueue order
//     and are decoded all or nothing.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  Endpoint:      "localhost:6379",
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	// Create the client
//	c, _ := client.NewDocumentClient(config, goredis.NewRedisClientTransport(), document.NewCodec())
//	defer c.Close()
//
//	// Use the client
//	c.Set(ctx, "user:1", "$", document.Object(map[string]document.Value{
//	  "name": document.String("karl"),
//	}))
//	v, _ := c.Get(ctx, "user:1", "$.name")
//
//	// Batch several commands into one round trip
//	results, _ := c.Pipeline().
//	  Set("user:2", "$", profile).
//	  Get("user:1").
//	  Execute(ctx)
//
// Thread Safety:
//
//	The client is thread-safe and can be used concurrently from multiple
//	goroutines. A Pipeline is not, every goroutine should build its own.
package client
