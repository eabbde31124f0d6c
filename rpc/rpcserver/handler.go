package rpcserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/virel-project/virel-social/rpc"
	"github.com/virel-project/virel-social/util"

	"github.com/pkg/errors"
)

const maxBodySize = 1 << 20

func (s *Server) handler(res http.ResponseWriter, req *http.Request) error {
	if req.Method == "OPTIONS" {
		if len(s.config.Authentication) == 0 {
			res.Header().Set("Access-Control-Allow-Origin", "*")
			res.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			res.WriteHeader(204)
			return nil
		}
	}

	if req.Method != "POST" {
		res.WriteHeader(405)
		WriteJSON(res, rpc.ResponseOut{
			JsonRpc: "2.0",
			Error: &rpc.Error{
				Code:    405,
				Message: "Method Not Allowed",
			},
		})
		return errors.New("method not allowed")
	}

	ip := util.RemovePort(req.RemoteAddr)
	if !s.limit.CanAct(ip, 1) {
		res.WriteHeader(429)
		WriteJSON(res, rpc.ResponseOut{
			JsonRpc: "2.0",
			Error: &rpc.Error{
				Code:    429,
				Message: "Too Many Requests",
			},
		})
		return errors.New("too many requests")
	}

	if s.config.Restricted {
		origin := req.Header.Get("Origin")
		if origin != "" && !isLocalOrigin(origin) {
			res.WriteHeader(400)
			WriteJSON(res, rpc.ResponseOut{
				JsonRpc: "2.0",
				Error: &rpc.Error{
					Code:    400,
					Message: "invalid origin",
				},
			})
			return errors.New("invalid origin")
		}
	}

	if len(s.config.Authentication) != 0 {
		uname, pw, ok := req.BasicAuth()
		if !ok || uname+":"+pw != s.config.Authentication {
			res.WriteHeader(401)
			s.limit.CanAct(ip, 9)
			WriteJSON(res, rpc.ResponseOut{
				JsonRpc: "2.0",
				Error: &rpc.Error{
					Code:    401,
					Message: "unauthorized",
				},
			})
			return errors.New("unauthorized")
		}
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if err != nil || len(body) < 2 {
		WriteJSON(res, rpc.ResponseOut{
			JsonRpc: "2.0",
			Error: &rpc.Error{
				Code:    rpc.CodeParseError,
				Message: "Parse error",
			},
			Id: 0,
		})
		return errors.New("invalid json")
	}

	var jsonBody rpc.RequestIn

	err = json.Unmarshal(body, &jsonBody)
	if err != nil {
		WriteJSON(res, rpc.ResponseOut{
			JsonRpc: "2.0",
			Error: &rpc.Error{
				Code:    rpc.CodeParseError,
				Message: "Parse error",
			},
			Id: jsonBody.Id,
		})
		return errors.Wrap(err, "invalid rpc request body")
	}

	res.Header().Set("Content-Type", "application/json")
	if len(s.config.Authentication) == 0 {
		res.Header().Set("Access-Control-Allow-Origin", "*")
	}

	if jsonBody.JsonRpc != "2.0" {
		WriteJSON(res, rpc.ResponseOut{
			JsonRpc: "2.0",
			Error: &rpc.Error{
				Code:    rpc.CodeInvalidRequest,
				Message: "invalid json_rpc version, expected 2.0",
			},
			Id: jsonBody.Id,
		})
		return errors.New("invalid json_rpc version, expected 2.0")
	}

	jsonBody.Method = strings.ToLower(jsonBody.Method)

	handler := s.handlers[jsonBody.Method]
	if handler == nil {
		WriteJSON(res, rpc.ResponseOut{
			JsonRpc: "2.0",
			Error: &rpc.Error{
				Code:    rpc.CodeMethodNotFound,
				Message: "Method not found",
			},
			Id: jsonBody.Id,
		})
		return errors.New("invalid method " + jsonBody.Method)
	}

	rpc.Log.NetDevf("rpc %s from %s", jsonBody.Method, ip)

	handler(NewContext(req, res, &jsonBody))
	return nil
}

func isLocalOrigin(origin string) bool {
	origin = strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	host := util.RemovePort(origin)
	return host == "127.0.0.1" || host == "localhost"
}

func WriteJSON(res http.ResponseWriter, v any) error {
	bin, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = res.Write(bin)
	return err
}
