package server

import (
	contextpkg "context"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	log "github.com/cloudposse/specls/pkg/logger"
	"github.com/cloudposse/specls/pkg/lsp/dispatcher"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Custom request methods.
const (
	MethodGenerate              = "generate"
	MethodIsOpenAPIDocument     = "isOpenApiDocument"
	MethodIsConfigurationFile   = "isConfigurationFile"
	MethodIsSupportedFile       = "isSupportedFile"
	MethodToJSON                = "toJSON"
	MethodFindConfigurationFile = "findConfigurationFile"
)

var errNotInitialized = errors.New("server not initialized")

// requestFunc serves one custom request. validParams is false when params could not be decoded.
type requestFunc func(ctx contextpkg.Context, params []byte) (result any, validParams bool, err error)

// request adapts a typed function to requestFunc.
func request[P any](fn func(ctx contextpkg.Context, params P) (any, error)) requestFunc {
	return func(ctx contextpkg.Context, raw []byte) (any, bool, error) {
		var params P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				return nil, false, err
			}
		}
		result, err := fn(ctx, params)
		return result, true, err
	}
}

// Requests returns the custom requests served next to the standard protocol.
func (h *Handler) Requests() map[string]requestFunc {
	d := h.dispatcher
	return map[string]requestFunc{
		MethodGenerate: request(func(ctx contextpkg.Context, p dispatcher.GenerateParams) (any, error) {
			return d.Generate(ctx, p)
		}),
		MethodIsOpenAPIDocument: request(func(ctx contextpkg.Context, p dispatcher.ContentParams) (any, error) {
			return d.IsOpenAPIDocument(ctx, p.ContentOrURI), nil
		}),
		MethodIsConfigurationFile: request(func(ctx contextpkg.Context, p dispatcher.ContentParams) (any, error) {
			return d.IsConfigurationFile(ctx, p.ContentOrURI), nil
		}),
		MethodIsSupportedFile: request(func(ctx contextpkg.Context, p dispatcher.ContentParams) (any, error) {
			return d.IsSupportedFile(ctx, p.LanguageID, p.ContentOrURI), nil
		}),
		MethodToJSON: request(func(ctx contextpkg.Context, p dispatcher.ContentParams) (any, error) {
			return d.ToJSON(ctx, p.ContentOrURI)
		}),
		MethodFindConfigurationFile: request(func(ctx contextpkg.Context, p dispatcher.DocumentParams) (any, error) {
			return d.FindConfigurationFile(ctx, p.DocumentURI), nil
		}),
	}
}

// customHandler serves custom requests and hands everything else to the protocol handler.
type customHandler struct {
	base     *protocol.Handler
	requests map[string]requestFunc
	ctx      contextpkg.Context
}

func newCustomHandler(ctx contextpkg.Context, base *protocol.Handler, requests map[string]requestFunc) *customHandler {
	return &customHandler{base: base, requests: requests, ctx: ctx}
}

// Handle implements glsp.Handler.
func (h *customHandler) Handle(context *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	fn, ok := h.requests[context.Method]
	if !ok {
		return h.base.Handle(context)
	}
	if !h.base.IsInitialized() {
		return nil, true, true, errNotInitialized
	}

	log.Debug("Custom request", "method", context.Method)
	r, validParams, err = fn(h.ctx, context.Params)
	return r, true, validParams, err
}
