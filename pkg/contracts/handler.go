package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by domain HTTP handlers that know how to
// mount their routes on the shared router.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
