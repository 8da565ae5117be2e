package client

import (
	"context"
	"errors"
	"testing"

	"github.com/ValentinKolb/dJSON/lib/document"
	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/ValentinKolb/dJSON/rpc/transport"
	"github.com/ValentinKolb/dJSON/rpc/transport/local"
)

// newTestClient creates a client wired to an in-process engine so tests can
// observe the keyspace without a server
func newTestClient(t *testing.T) (*DocumentClient, *local.Engine) {
	t.Helper()

	engine := local.NewEngine()
	c, err := NewDocumentClient(common.ClientConfig{}, local.NewLocalTransport(engine), document.NewCodec())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return c, engine
}

// TestClientSetGet tests whole document round trips through the client
func TestClientSetGet(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	profile := document.Object(map[string]document.Value{
		"name":  document.String("karl"),
		"age":   document.Number(30),
		"admin": document.Bool(false),
	})

	ok, err := c.Set(ctx, "user:1", "$", profile)
	if err != nil {
		t.Fatalf("Failed to set document: %v", err)
	}
	if !ok {
		t.Errorf("Expected the write to be acknowledged")
	}

	// The whole document comes back structurally equal
	v, err := c.Get(ctx, "user:1")
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if !v.Equal(profile) {
		t.Errorf("Expected %v, got %v", profile, v)
	}

	// A single path yields the value at that path
	v, err = c.Get(ctx, "user:1", "$.name")
	if err != nil {
		t.Fatalf("Failed to get path: %v", err)
	}
	if !v.Equal(document.String("karl")) {
		t.Errorf("Expected karl, got %v", v)
	}

	// Several paths yield an object keyed by path
	v, err = c.Get(ctx, "user:1", "$.name", "$.age")
	if err != nil {
		t.Fatalf("Failed to get paths: %v", err)
	}
	expected := document.Object(map[string]document.Value{
		"$.name": document.String("karl"),
		"$.age":  document.Number(30),
	})
	if !v.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, v)
	}

	// A missing key decodes to the null value without error
	v, err = c.Get(ctx, "user:404")
	if err != nil {
		t.Fatalf("Failed to get missing key: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("Expected the null value for a missing key, got %v", v)
	}
}

// TestClientSetConditions tests the NX and XX write conditions
func TestClientSetConditions(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	// NX succeeds on a fresh key
	ok, err := c.Set(ctx, "cond", "$", document.Number(1), SetNX())
	if err != nil {
		t.Fatalf("Failed to set with NX: %v", err)
	}
	if !ok {
		t.Errorf("Expected NX to succeed on a fresh key")
	}

	// NX fails silently once the key exists
	ok, err = c.Set(ctx, "cond", "$", document.Number(2), SetNX())
	if err != nil {
		t.Fatalf("Unexpected error from unmet NX: %v", err)
	}
	if ok {
		t.Errorf("Expected NX to report false on an existing key")
	}

	// The original value is untouched
	v, err := c.Get(ctx, "cond")
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if !v.Equal(document.Number(1)) {
		t.Errorf("Expected 1, got %v", v)
	}

	// XX succeeds on an existing key
	ok, err = c.Set(ctx, "cond", "$", document.Number(3), SetXX())
	if err != nil {
		t.Fatalf("Failed to set with XX: %v", err)
	}
	if !ok {
		t.Errorf("Expected XX to succeed on an existing key")
	}

	// XX fails silently on a missing key
	ok, err = c.Set(ctx, "cond:404", "$", document.Number(4), SetXX())
	if err != nil {
		t.Fatalf("Unexpected error from unmet XX: %v", err)
	}
	if ok {
		t.Errorf("Expected XX to report false on a missing key")
	}
}

// TestClientDeletion tests Del, Forget and Clear
func TestClientDeletion(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Set(ctx, "doc", "$", document.Object(map[string]document.Value{
		"keep": document.Number(1),
		"drop": document.Number(2),
		"list": document.Array(document.Number(1), document.Number(2)),
	})); err != nil {
		t.Fatalf("Failed to set document: %v", err)
	}

	// A removed path counts once
	n, err := c.Del(ctx, "doc", "$.drop")
	if err != nil {
		t.Fatalf("Failed to delete path: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 removal, got %d", n)
	}

	// Removing it again counts zero
	if n, _ := c.Forget(ctx, "doc", "$.drop"); n != 0 {
		t.Errorf("Expected 0 removals, got %d", n)
	}

	// Clearing empties containers and zeroes numbers
	n, err = c.Clear(ctx, "doc", "$.list")
	if err != nil {
		t.Fatalf("Failed to clear path: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 cleared value, got %d", n)
	}
	v, _ := c.Get(ctx, "doc", "$.list")
	if !v.Equal(document.Array()) {
		t.Errorf("Expected an empty array, got %v", v)
	}

	// Deleting the root removes the key
	if n, _ := c.Del(ctx, "doc", "$"); n != 1 {
		t.Errorf("Expected 1 removal for the root, got %d", n)
	}
	if v, _ := c.Get(ctx, "doc"); !v.IsNull() {
		t.Errorf("Expected the key to be gone, got %v", v)
	}

	// A missing key counts zero
	if n, _ := c.Del(ctx, "doc", "$"); n != 0 {
		t.Errorf("Expected 0 removals for a missing key, got %d", n)
	}
}

// TestClientMGet tests fetching one path from several keys at once
func TestClientMGet(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for key, n := range map[string]float64{"a": 1, "c": 3} {
		if _, err := c.Set(ctx, key, "$", document.Object(map[string]document.Value{
			"n": document.Number(n),
		})); err != nil {
			t.Fatalf("Failed to set %s: %v", key, err)
		}
	}

	values, err := c.MGet(ctx, "$.n", "a", "b", "c")
	if err != nil {
		t.Fatalf("Failed to mget: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("Expected 3 values, got %d", len(values))
	}
	if !values[0].Equal(document.Number(1)) {
		t.Errorf("Expected 1 at position 0, got %v", values[0])
	}
	if !values[1].IsNull() {
		t.Errorf("Expected null for the missing key, got %v", values[1])
	}
	if !values[2].Equal(document.Number(3)) {
		t.Errorf("Expected 3 at position 2, got %v", values[2])
	}
}

// TestClientNumbers tests the numeric update commands
func TestClientNumbers(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Set(ctx, "num", "$", document.Object(map[string]document.Value{
		"n": document.Number(5),
	})); err != nil {
		t.Fatalf("Failed to set document: %v", err)
	}

	v, err := c.NumIncrBy(ctx, "num", "$.n", 1.5)
	if err != nil {
		t.Fatalf("Failed to increment: %v", err)
	}
	if !v.Equal(document.Number(6.5)) {
		t.Errorf("Expected 6.5, got %v", v)
	}

	v, err = c.NumMultBy(ctx, "num", "$.n", 2)
	if err != nil {
		t.Fatalf("Failed to multiply: %v", err)
	}
	if !v.Equal(document.Number(13)) {
		t.Errorf("Expected 13, got %v", v)
	}

	// Numeric updates on non-numbers fail
	if _, err := c.Set(ctx, "num", "$.s", document.String("text")); err != nil {
		t.Fatalf("Failed to set string: %v", err)
	}
	if _, err := c.NumIncrBy(ctx, "num", "$.s", 1); err == nil {
		t.Errorf("Expected error when incrementing a string")
	}
}

// TestClientStrings tests Toggle, StrAppend and StrLen
func TestClientStrings(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Set(ctx, "doc", "$", document.Object(map[string]document.Value{
		"flag": document.Bool(false),
		"s":    document.String("hello"),
	})); err != nil {
		t.Fatalf("Failed to set document: %v", err)
	}

	v, err := c.Toggle(ctx, "doc", "$.flag")
	if err != nil {
		t.Fatalf("Failed to toggle: %v", err)
	}
	if !v.Equal(document.Bool(true)) {
		t.Errorf("Expected true, got %v", v)
	}

	v, err = c.StrAppend(ctx, "doc", "$.s", " world")
	if err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if !v.Equal(document.Number(11)) {
		t.Errorf("Expected the new length 11, got %v", v)
	}

	v, err = c.StrLen(ctx, "doc", "$.s")
	if err != nil {
		t.Fatalf("Failed to get string length: %v", err)
	}
	if !v.Equal(document.Number(11)) {
		t.Errorf("Expected 11, got %v", v)
	}
}

// TestClientArrays tests the array commands end to end
func TestClientArrays(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Set(ctx, "doc", "$", document.Object(map[string]document.Value{
		"list": document.Array(document.Number(1)),
	})); err != nil {
		t.Fatalf("Failed to set document: %v", err)
	}

	v, err := c.ArrAppend(ctx, "doc", "$.list", document.Number(2), document.Number(3))
	if err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if !v.Equal(document.Number(3)) {
		t.Errorf("Expected length 3, got %v", v)
	}

	v, err = c.ArrIndex(ctx, "doc", "$.list", document.Number(3))
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if !v.Equal(document.Number(2)) {
		t.Errorf("Expected index 2, got %v", v)
	}

	// An absent value reports -1
	if v, _ := c.ArrIndex(ctx, "doc", "$.list", document.Number(99)); !v.Equal(document.Number(-1)) {
		t.Errorf("Expected -1 for an absent value, got %v", v)
	}

	// More than two range arguments are rejected locally
	if _, err := c.ArrIndex(ctx, "doc", "$.list", document.Number(1), 0, 1, 2); err == nil {
		t.Errorf("Expected error for too many range arguments")
	}

	v, err = c.ArrInsert(ctx, "doc", "$.list", 0, document.Number(0))
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if !v.Equal(document.Number(4)) {
		t.Errorf("Expected length 4, got %v", v)
	}

	v, err = c.ArrPop(ctx, "doc", "$.list", -1)
	if err != nil {
		t.Fatalf("Failed to pop: %v", err)
	}
	if !v.Equal(document.Number(3)) {
		t.Errorf("Expected the popped 3, got %v", v)
	}

	v, err = c.ArrTrim(ctx, "doc", "$.list", 1, 2)
	if err != nil {
		t.Fatalf("Failed to trim: %v", err)
	}
	if !v.Equal(document.Number(2)) {
		t.Errorf("Expected length 2 after trim, got %v", v)
	}

	expected := document.Array(document.Number(1), document.Number(2))
	if v, _ := c.Get(ctx, "doc", "$.list"); !v.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, v)
	}
}

// TestClientObjects tests ObjKeys and ObjLen
func TestClientObjects(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Set(ctx, "doc", "$", document.Object(map[string]document.Value{
		"b": document.Number(2),
		"a": document.Number(1),
	})); err != nil {
		t.Fatalf("Failed to set document: %v", err)
	}

	v, err := c.ObjKeys(ctx, "doc", "$")
	if err != nil {
		t.Fatalf("Failed to get keys: %v", err)
	}
	if !v.Equal(document.Array(document.String("a"), document.String("b"))) {
		t.Errorf("Expected the sorted field names, got %v", v)
	}

	v, err = c.ObjLen(ctx, "doc", "$")
	if err != nil {
		t.Fatalf("Failed to get field count: %v", err)
	}
	if !v.Equal(document.Number(2)) {
		t.Errorf("Expected 2, got %v", v)
	}
}

// TestClientDebugMemory tests the memory footprint report
func TestClientDebugMemory(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Set(ctx, "doc", "$", document.String("hello")); err != nil {
		t.Fatalf("Failed to set document: %v", err)
	}

	v, err := c.DebugMemory(ctx, "doc")
	if err != nil {
		t.Fatalf("Failed to report memory: %v", err)
	}
	if v.Kind() != document.KindNumber || v.NumberVal() <= 0 {
		t.Errorf("Expected a positive byte count, got %v", v)
	}

	// A missing key reports zero
	if v, _ := c.DebugMemory(ctx, "doc:404"); !v.Equal(document.Number(0)) {
		t.Errorf("Expected 0 for a missing key, got %v", v)
	}
}

// TestClientExecute tests the generic escape hatch
func TestClientExecute(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	// Core store commands pass their raw reply through unchanged
	resp, err := c.Execute(ctx, "PING")
	if err != nil {
		t.Fatalf("Failed to ping: %v", err)
	}
	if resp != "PONG" {
		t.Errorf("Expected the raw PONG reply, got %v", resp)
	}

	// Module commands still decode through the transform table
	if _, err := c.Set(ctx, "doc", "$", document.Number(42)); err != nil {
		t.Fatalf("Failed to set document: %v", err)
	}
	resp, err = c.Execute(ctx, common.CmdGet, "doc")
	if err != nil {
		t.Fatalf("Failed to execute get: %v", err)
	}
	if v, ok := resp.(document.Value); !ok || !v.Equal(document.Number(42)) {
		t.Errorf("Expected the decoded 42, got %v", resp)
	}
}

// --------------------------------------------------------------------------
// Construction Failures
// --------------------------------------------------------------------------

// brokenTransport fails either hook registration or connecting, depending
// on which error is set
type brokenTransport struct {
	registerErr error
	connectErr  error
	connected   bool
}

func (t *brokenTransport) RegisterResponseHook(_ common.CommandName, _ transport.ResponseTransform) error {
	return t.registerErr
}

func (t *brokenTransport) Connect(_ common.ClientConfig) error {
	t.connected = true
	return t.connectErr
}

func (t *brokenTransport) Send(_ context.Context, _ common.CommandName, _ ...any) (any, error) {
	return nil, nil
}

func (t *brokenTransport) Do(_ context.Context, _ common.CommandName, _ ...any) (any, error) {
	return nil, nil
}

func (t *brokenTransport) Pipeline() transport.IPipeline   { return nil }
func (t *brokenTransport) TxPipeline() transport.IPipeline { return nil }
func (t *brokenTransport) Close() error                    { return nil }

// TestClientConstructionError tests that a failed transform registration
// aborts construction before the transport ever connects
func TestClientConstructionError(t *testing.T) {
	registerErr := errors.New("registry full")
	broken := &brokenTransport{registerErr: registerErr}

	_, err := NewDocumentClient(common.ClientConfig{}, broken, document.NewCodec())
	if err == nil {
		t.Fatalf("Expected construction to fail")
	}

	var constructionErr *ConstructionError
	if !errors.As(err, &constructionErr) {
		t.Fatalf("Expected a ConstructionError, got %T", err)
	}
	if !errors.Is(err, registerErr) {
		t.Errorf("Expected the registration error to be wrapped")
	}
	if broken.connected {
		t.Errorf("Expected no connection attempt after a failed registration")
	}
}

// TestClientConnectError tests that connection errors pass through without
// being rewrapped
func TestClientConnectError(t *testing.T) {
	connectErr := errors.New("endpoint unreachable")
	broken := &brokenTransport{connectErr: connectErr}

	_, err := NewDocumentClient(common.ClientConfig{}, broken, document.NewCodec())
	if !errors.Is(err, connectErr) {
		t.Fatalf("Expected the connection error unchanged, got %v", err)
	}

	var constructionErr *ConstructionError
	if errors.As(err, &constructionErr) {
		t.Errorf("Expected no ConstructionError for a connection failure")
	}
}
