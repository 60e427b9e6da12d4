package oracle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"math/big"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	jsonrpcVersion    = "2.0"
	latestRoundMethod = "feed_latestRoundData"
)

// A rpcClient represents a JSON RPC client (over HTTP(s)).
type rpcClient struct {
	url        string
	httpClient *retryablehttp.Client
	timeout    int
	debug      bool
}

type rpcRequest struct {
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Id      int64       `json:"id"`
	JsonRpc string      `json:"jsonrpc"`
}

// RPCErrorCode represents an error code to be used as a part of an RPCError
// which is in turn used in a JSON-RPC Response object.
type RPCErrorCode int

// RPCError represents an error returned inside a JSON-RPC Response object.
type RPCError struct {
	Code    RPCErrorCode `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}

var _, _ error = RPCError{}, (*RPCError)(nil)

func (e RPCError) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

type rpcResponse struct {
	Id     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Client reads a price feed service over JSON-RPC.
type Client struct {
	rpc *rpcClient
}

func NewClient(url string, timeout int, debug bool) (*Client, error) {
	if len(url) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 3

	return &Client{rpc: &rpcClient{
		url,
		retryClient,
		timeout,
		debug,
	}}, nil
}

// roundData is the wire shape of a feed round. The answer travels as a
// decimal string to survive feeds wider than 64 bits.
type roundData struct {
	RoundId         uint64 `json:"roundId"`
	Answer          string `json:"answer"`
	StartedAt       int64  `json:"startedAt"`
	UpdatedAt       int64  `json:"updatedAt"`
	AnsweredInRound uint64 `json:"answeredInRound"`
}

func (c *Client) LatestRoundData() (Round, error) {
	resp, err := c.rpc.call(latestRoundMethod, []interface{}{})
	if err != nil {
		return Round{}, err
	}
	if resp.Error != nil {
		return Round{}, resp.Error
	}

	var data roundData
	if err := json.Unmarshal(resp.Result, &data); err != nil {
		return Round{}, err
	}

	answer, ok := new(big.Int).SetString(data.Answer, 10)
	if !ok {
		return Round{}, fmt.Errorf("malformed feed answer: %s", data.Answer)
	}

	return Round{
		RoundId:         data.RoundId,
		Answer:          answer,
		StartedAt:       data.StartedAt,
		UpdatedAt:       data.UpdatedAt,
		AnsweredInRound: data.AnsweredInRound,
	}, nil
}

// doTimeoutRequest process a HTTP request with timeout
func (c *rpcClient) doTimeoutRequest(timer *time.Timer, req *retryablehttp.Request) (*http.Response, error) {
	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := c.httpClient.Do(req)
		done <- result{resp, err}
	}()
	// Wait for the read or the timeout
	select {
	case r := <-done:
		return r.resp, r.err
	case <-timer.C:
		return nil, errors.New("timeout reading data from server")
	}
}

// call prepare & exec the request
func (c *rpcClient) call(method string, params interface{}) (rr *rpcResponse, err error) {
	rpcR := rpcRequest{method, params, time.Now().UnixNano(), jsonrpcVersion}
	payloadBuffer := &bytes.Buffer{}
	jsonEncoder := json.NewEncoder(payloadBuffer)
	err = jsonEncoder.Encode(rpcR)
	if err != nil {
		return
	}

	zap.L().With(zap.String("request", rpcR.Method), zap.String("params", fmt.Sprintf("%v", params))).Debug("Oracle: RPC Request")
	if c.debug {
		zap.L().With(zap.String("request", payloadBuffer.String())).Debug("Oracle: RPC Request")
	}

	req, err := retryablehttp.NewRequest("POST", c.url, payloadBuffer)
	if err != nil {
		return
	}

	req.Header.Add("Content-Type", "application/json;charset=utf-8")
	req.Header.Add("Accept", "application/json")

	resp, err := c.doTimeoutRequest(time.NewTimer(time.Duration(c.timeout)*time.Second), req)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Oracle: RPC Failure")
		return
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return
	}

	if c.debug {
		zap.L().With(zap.String("response", string(data))).Debug("Oracle: RPC Response")
	}

	err = json.Unmarshal(data, &rr)
	return
}
