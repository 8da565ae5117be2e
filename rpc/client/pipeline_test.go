package client

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/ValentinKolb/dJSON/rpc/transport"
)

// TestPipelineOrdering tests that batched replies come back decoded in
// enqueue order
func TestPipelineOrdering(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	results, err := c.Pipeline().
		Set("batch", "$", document.Object(map[string]document.Value{"n": document.Number(1)})).
		NumIncrBy("batch", "$.n", 2).
		Get("batch", "$.n").
		Execute(ctx)
	if err != nil {
		t.Fatalf("Failed to execute batch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	if ok, isBool := results[0].(bool); !isBool || !ok {
		t.Errorf("Expected the write acknowledged at position 0, got %v", results[0])
	}
	if v, isValue := results[1].(document.Value); !isValue || !v.Equal(document.Number(3)) {
		t.Errorf("Expected 3 at position 1, got %v", results[1])
	}
	if v, isValue := results[2].(document.Value); !isValue || !v.Equal(document.Number(3)) {
		t.Errorf("Expected 3 at position 2, got %v", results[2])
	}
}

// TestPipelineRawPassThrough tests that commands without a response
// transform keep their raw reply at their position
func TestPipelineRawPassThrough(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	results, err := c.Pipeline().
		Set("doc", "$", document.Number(1)).
		Enqueue("PING").
		Get("doc").
		Execute(ctx)
	if err != nil {
		t.Fatalf("Failed to execute batch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[1] != "PONG" {
		t.Errorf("Expected the raw PONG reply at position 1, got %v", results[1])
	}
}

// TestPipelineDiscard tests that a discarded batch sends nothing
func TestPipelineDiscard(t *testing.T) {
	c, engine := newTestClient(t)
	ctx := context.Background()

	p := c.Pipeline().
		Set("never", "$", document.Number(1)).
		Del("never", "$")
	if p.Len() != 2 {
		t.Errorf("Expected 2 buffered commands, got %d", p.Len())
	}

	p.Discard()
	if p.Len() != 0 {
		t.Errorf("Expected an empty pipeline after discard, got %d", p.Len())
	}
	if n := engine.OpCount(); n != 0 {
		t.Errorf("Expected no executed commands after discard, got %d", n)
	}

	// An empty batch executes to an empty result
	results, err := p.Execute(ctx)
	if err != nil {
		t.Fatalf("Failed to execute empty batch: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

// TestPipelineReuse tests that a pipeline starts fresh after Execute
func TestPipelineReuse(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	p := c.Pipeline()

	results, err := p.
		Set("doc", "$", document.Number(1)).
		Get("doc").
		Execute(ctx)
	if err != nil {
		t.Fatalf("Failed to execute first batch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	results, err = p.Del("doc", "$").Execute(ctx)
	if err != nil {
		t.Fatalf("Failed to execute second batch: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if n, ok := results[0].(int64); !ok || n != 1 {
		t.Errorf("Expected 1 removal, got %v", results[0])
	}
}

// TestPipelineTx tests that the transactional batch decodes like the plain
// one
func TestPipelineTx(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	results, err := c.TxPipeline().
		Set("tx", "$", document.Array(document.Number(1))).
		ArrAppend("tx", "$", document.Number(2)).
		Execute(ctx)
	if err != nil {
		t.Fatalf("Failed to execute transactional batch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if v, ok := results[1].(document.Value); !ok || !v.Equal(document.Number(2)) {
		t.Errorf("Expected the new length 2, got %v", results[1])
	}
}

// TestPipelineBuilderError tests that an unencodable value surfaces on
// Execute and sends nothing
func TestPipelineBuilderError(t *testing.T) {
	c, engine := newTestClient(t)
	ctx := context.Background()

	_, err := c.Pipeline().
		Set("doc", "$", document.Number(math.NaN())).
		Get("doc").
		Execute(ctx)
	if err == nil {
		t.Fatalf("Expected the builder error to surface on Execute")
	}
	if !strings.Contains(err.Error(), "queueing JSON.SET") {
		t.Errorf("Expected the failing command in the error, got %v", err)
	}
	if n := engine.OpCount(); n != 0 {
		t.Errorf("Expected no executed commands after a builder error, got %d", n)
	}
}

// --------------------------------------------------------------------------
// Decode Failures
// --------------------------------------------------------------------------

// stubBatchTransport feeds canned batch replies into the pipeline so
// malformed replies can be simulated
type stubBatchTransport struct {
	replies []any
}

func (t *stubBatchTransport) Connect(_ common.ClientConfig) error { return nil }

func (t *stubBatchTransport) Send(_ context.Context, _ common.CommandName, _ ...any) (any, error) {
	return nil, nil
}

func (t *stubBatchTransport) Do(_ context.Context, _ common.CommandName, _ ...any) (any, error) {
	return nil, nil
}

func (t *stubBatchTransport) Pipeline() transport.IPipeline {
	return &stubBatchPipeline{replies: t.replies}
}

func (t *stubBatchTransport) TxPipeline() transport.IPipeline { return t.Pipeline() }
func (t *stubBatchTransport) Close() error                    { return nil }

type stubBatchPipeline struct {
	replies []any
	queued  int
}

func (p *stubBatchPipeline) Enqueue(_ common.CommandName, _ ...any) { p.queued++ }
func (p *stubBatchPipeline) SendAll(_ context.Context) ([]any, error) {
	p.queued = 0
	return p.replies, nil
}
func (p *stubBatchPipeline) Discard() { p.queued = 0 }
func (p *stubBatchPipeline) Len() int { return p.queued }

// TestPipelineAllOrNothing tests that one undecodable reply fails the whole
// batch with its position in the error
func TestPipelineAllOrNothing(t *testing.T) {
	stub := &stubBatchTransport{replies: []any{[]byte(`1`), "not a count"}}
	c, err := NewDocumentClient(common.ClientConfig{}, stub, document.NewCodec())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = c.Pipeline().
		Get("doc").
		Del("doc", "$").
		Execute(context.Background())
	if err == nil {
		t.Fatalf("Expected the batch to fail on the undecodable reply")
	}
	if !strings.Contains(err.Error(), "batch position 1 (JSON.DEL)") {
		t.Errorf("Expected the failing position in the error, got %v", err)
	}
}

// TestPipelineReplyCountMismatch tests that a short reply list fails the
// batch
func TestPipelineReplyCountMismatch(t *testing.T) {
	stub := &stubBatchTransport{replies: []any{[]byte(`1`)}}
	c, err := NewDocumentClient(common.ClientConfig{}, stub, document.NewCodec())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = c.Pipeline().
		Get("a").
		Get("b").
		Execute(context.Background())
	if err == nil {
		t.Fatalf("Expected the batch to fail on the reply count mismatch")
	}
	if !strings.Contains(err.Error(), "sent 2 commands, received 1 replies") {
		t.Errorf("Expected the counts in the error, got %v", err)
	}
}
