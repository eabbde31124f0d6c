package daemonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/virel-project/virel-social/rpc"

	"github.com/pkg/errors"
)

type RpcClient struct {
	DaemonAddress string

	// username:password sent as Basic Auth, empty for none
	Authentication string

	client *http.Client
}

func NewRpcClient(addr string) *RpcClient {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &RpcClient{
		DaemonAddress: addr,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Request calls method and decodes the result into output. A JSON-RPC error returned by the daemon is
// a *rpc.Error.
func (r *RpcClient) Request(ctx context.Context, method string, params any, output any) error {
	body := rpc.RequestOut{
		JsonRpc: "2.0",
		Method:  method,
		Params:  params,
		Id:      0,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.DaemonAddress, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.Authentication != "" {
		user, pass, _ := strings.Cut(r.Authentication, ":")
		req.SetBasicAuth(user, pass)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s request", method)
	}

	defer res.Body.Close()

	dat, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "%s read response", method)
	}

	rpc.Log.NetDevf("%s response: %s", method, dat)

	out2 := rpc.ResponseIn{}

	err = json.Unmarshal(dat, &out2)
	if err != nil {
		return errors.Wrapf(err, "%s: invalid response (http status %d)", method, res.StatusCode)
	}

	if out2.Error != nil {
		return out2.Error
	}

	if len(out2.Result) == 0 {
		return errors.Errorf("%s: empty result", method)
	}

	return json.Unmarshal(out2.Result, output)
}
