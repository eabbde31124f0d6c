package rpcserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/virel-project/virel-social/rpc"
)

type Context struct {
	req *http.Request
	res http.ResponseWriter

	Body *rpc.RequestIn
}

func NewContext(req *http.Request, res http.ResponseWriter, body *rpc.RequestIn) *Context {
	return &Context{
		req:  req,
		res:  res,
		Body: body,
	}
}

// Context is cancelled when the client goes away.
func (c *Context) Context() context.Context {
	return c.req.Context()
}

// GetParams decodes the request params into result. On failure the error response is already written.
func (c *Context) GetParams(result any) error {
	params := c.Body.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	err := json.Unmarshal(params, result)

	if err != nil {
		c.ErrorResponse(&rpc.Error{
			Code:    rpc.CodeInvalidParams,
			Message: "Invalid params: " + err.Error(),
		})
	}
	return err
}

func (c *Context) SuccessResponse(result any) error {
	return c.Response(rpc.ResponseOut{
		JsonRpc: "2.0",
		Result:  result,
		Id:      c.Body.Id,
	})
}

func (c *Context) ErrorResponse(e *rpc.Error) error {
	return c.Response(rpc.ResponseOut{
		JsonRpc: "2.0",
		Error:   e,
		Id:      c.Body.Id,
	})
}

func (c *Context) Response(v rpc.ResponseOut) error {
	return WriteJSON(c.res, v)
}
