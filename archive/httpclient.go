package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// HTTPClient is the Client implementation this gateway runs against in
// production: the archive service exposes its height and batch query
// endpoints over plain HTTP, columns framed as JSON rather than Arrow
// IPC, since the corpus this module was grown from has no Arrow
// dependency to decode IPC record batches with. A Batch from the wire
// decodes into the same MapBatch this package's own tests build by
// hand, so DecodeBlockHeaders and friends never know the difference.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type heightResponse struct {
	Height uint64 `json:"height"`
}

func (c *HTTPClient) Height(ctx context.Context) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/height", nil)
	if err != nil {
		return 0, fmt.Errorf("archive http client: build height request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("archive http client: height request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("archive http client: height request: status %d", resp.StatusCode)
	}
	var out heightResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("archive http client: decode height response: %w", err)
	}
	return out.Height, nil
}

// wireQuery is Query's JSON-over-the-wire shape. Address/hash slices
// are hex-encoded since JSON has no native byte-string type.
type wireQuery struct {
	FromBlock        uint64              `json:"from_block"`
	ToBlock          uint64              `json:"to_block"`
	IncludeAllBlocks bool                `json:"include_all_blocks,omitempty"`
	Transactions     []wireTxSelection   `json:"transactions,omitempty"`
	Logs             []wireLogSelection  `json:"logs,omitempty"`
	MaxNumLogs       *int                `json:"max_num_logs,omitempty"`
	Fields           wireFieldSelection  `json:"fields"`
}

type wireTxSelection struct {
	From    []string `json:"from,omitempty"`
	To      []string `json:"to,omitempty"`
	Sighash []string `json:"sighash,omitempty"`
}

type wireLogSelection struct {
	Address []string    `json:"address,omitempty"`
	Topics  [4][]string `json:"topics,omitempty"`
}

type wireFieldSelection struct {
	Block       []string `json:"block,omitempty"`
	Transaction []string `json:"transaction,omitempty"`
	Log         []string `json:"log,omitempty"`
	Receipt     []string `json:"receipt,omitempty"`
}

type wireBatch struct {
	NumRows       int                 `json:"num_rows"`
	Uint64Columns map[string][]uint64 `json:"uint64_columns"`
	BytesColumns  map[string][]string `json:"bytes_columns"`
	BoolColumns   map[string][]bool   `json:"bool_columns"`
}

type wireQueryResult struct {
	NextBlock    uint64      `json:"next_block"`
	Blocks       []wireBatch `json:"blocks"`
	Transactions []wireBatch `json:"transactions"`
	Logs         []wireBatch `json:"logs"`
	Receipts     []wireBatch `json:"receipts"`
}

func encodeAddresses(addrs []common.Address) []string {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	return out
}

func encodeHashes(hashes []common.Hash) []string {
	if len(hashes) == 0 {
		return nil
	}
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = h.Hex()
	}
	return out
}

func encodeBytesSlice(raw [][]byte) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, len(raw))
	for i, b := range raw {
		out[i] = hexutilBytes(b)
	}
	return out
}

func hexutilBytes(b []byte) string {
	return "0x" + common.Bytes2Hex(b)
}

func (q Query) toWire() wireQuery {
	w := wireQuery{
		FromBlock:        q.FromBlock,
		ToBlock:          q.ToBlock,
		IncludeAllBlocks: q.IncludeAllBlocks,
		MaxNumLogs:       q.MaxNumLogs,
		Fields: wireFieldSelection{
			Block:       q.Fields.Block,
			Transaction: q.Fields.Transaction,
			Log:         q.Fields.Log,
			Receipt:     q.Fields.Receipt,
		},
	}
	for _, t := range q.Transactions {
		w.Transactions = append(w.Transactions, wireTxSelection{
			From:    encodeAddresses(t.From),
			To:      encodeAddresses(t.To),
			Sighash: encodeBytesSlice(t.Sighash),
		})
	}
	for _, l := range q.Logs {
		wl := wireLogSelection{Address: encodeAddresses(l.Address)}
		for i, topics := range l.Topics {
			wl.Topics[i] = encodeHashes(topics)
		}
		w.Logs = append(w.Logs, wl)
	}
	return w
}

func decodeWireBatch(wb wireBatch) *MapBatch {
	m := NewMapBatch(wb.NumRows)
	for name, col := range wb.Uint64Columns {
		m.Uint64s[name] = col
	}
	for name, col := range wb.BoolColumns {
		m.Bools[name] = col
	}
	for name, col := range wb.BytesColumns {
		raw := make([][]byte, len(col))
		for i, s := range col {
			raw[i] = common.FromHex(s)
		}
		m.Bytes[name] = raw
	}
	return m
}

func decodeWireBatches(wbs []wireBatch) []Batch {
	if len(wbs) == 0 {
		return nil
	}
	out := make([]Batch, len(wbs))
	for i, wb := range wbs {
		out[i] = decodeWireBatch(wb)
	}
	return out
}

func (c *HTTPClient) Query(ctx context.Context, q Query) (QueryResult, error) {
	body, err := json.Marshal(q.toWire())
	if err != nil {
		return QueryResult{}, fmt.Errorf("archive http client: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return QueryResult{}, fmt.Errorf("archive http client: build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return QueryResult{}, fmt.Errorf("archive http client: query request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return QueryResult{}, fmt.Errorf("archive http client: reading query response: %w", err)
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return QueryResult{}, ErrRowLimitExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return QueryResult{}, fmt.Errorf("archive http client: query request: status %d", resp.StatusCode)
	}

	var wr wireQueryResult
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return QueryResult{}, fmt.Errorf("archive http client: decode query response: %w", err)
	}

	return QueryResult{
		NextBlock:    wr.NextBlock,
		Blocks:       decodeWireBatches(wr.Blocks),
		Transactions: decodeWireBatches(wr.Transactions),
		Logs:         decodeWireBatches(wr.Logs),
		Receipts:     decodeWireBatches(wr.Receipts),
	}, nil
}

var _ Client = (*HTTPClient)(nil)
