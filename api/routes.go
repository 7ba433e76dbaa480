// Package api maps HTTP requests onto the adaptor and topology services and
// folds their outcomes into the structured status/title/detail envelope.
// Internal error detail never crosses this boundary.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"databroker/internal/adaptor"
	"databroker/internal/gateway"
	"databroker/internal/identity"
	"databroker/internal/models"
)

// AdaptorService drives the provisioning and decommissioning workflows.
type AdaptorService interface {
	Register(req models.RegisterRequest) (*models.Registration, error)
	Deregister(adaptorID string) error
}

// TopologyService exposes the flat directory operations.
type TopologyService interface {
	CreateVhost(name string) (gateway.Outcome, error)
	DeleteVhost(name string) error
	ListVhosts() ([]string, error)
	CreateExchange(name string) (gateway.Outcome, error)
	GetExchange(name string) (map[string]interface{}, error)
	DeleteExchange(name string) error
	ListExchangeSubscribers(exchange string) (map[string][]string, error)
	CreateQueue(name string) (gateway.Outcome, error)
	GetQueue(name string) (map[string]interface{}, error)
	DeleteQueue(name string) error
	ListQueueRoutingKeys(queue string) ([]string, error)
	BindQueue(exchange, queue string, routingKeys []string) error
	UnbindQueue(exchange, queue string, routingKeys []string) error
}

func RegisterRoutes(r *gin.Engine, adaptors AdaptorService, topo TopologyService) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/adaptors", registerAdaptor(adaptors))
	r.DELETE("/adaptors/*id", deregisterAdaptor(adaptors))

	r.GET("/vhosts", listVhosts(topo))
	r.POST("/vhosts", createVhost(topo))
	r.DELETE("/vhosts/:name", deleteVhost(topo))

	r.POST("/exchanges", createExchange(topo))
	r.GET("/exchanges/*name", getExchange(topo))
	r.DELETE("/exchanges/*name", deleteExchange(topo))
	r.GET("/subscribers/*name", listExchangeSubscribers(topo))

	r.POST("/queues", createQueue(topo))
	r.GET("/queues/:name", getQueue(topo))
	r.DELETE("/queues/:name", deleteQueue(topo))
	r.GET("/queues/:name/bindings", listQueueBindings(topo))

	r.POST("/bindings", bindQueue(topo))
	r.DELETE("/bindings", unbindQueue(topo))
}

// failure translates workflow and gateway errors into the envelope. The
// detail string carries the sanitized error text only.
func failure(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	title := "error"

	switch {
	case errors.Is(err, identity.ErrInvalidIdentity):
		status = http.StatusBadRequest
		title = "bad request"
	case errors.Is(err, gateway.ErrNotFound):
		status = http.StatusNotFound
		title = "not found"
	case errors.Is(err, adaptor.ErrExchangeConflict), errors.Is(err, gateway.ErrConflict):
		status = http.StatusConflict
		title = "conflict"
	case errors.Is(err, gateway.ErrUnavailable):
		title = "gateway unavailable"
	case errors.Is(err, adaptor.ErrUserCreation):
		title = "user creation error"
	case errors.Is(err, adaptor.ErrExchangeCreation):
		title = "exchange creation error"
	case errors.Is(err, adaptor.ErrPermission):
		title = "permission error"
	case errors.Is(err, adaptor.ErrBinding):
		title = "binding error"
	case errors.Is(err, adaptor.ErrDecommission):
		title = "decommission error"
	}

	c.JSON(status, models.Response{Type: status, Title: title, Detail: err.Error()})
}

func registerAdaptor(svc AdaptorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.Response{
				Type: http.StatusBadRequest, Title: "bad request", Detail: "invalid registration payload",
			})
			return
		}
		record, err := svc.Register(req)
		if err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

func deregisterAdaptor(svc AdaptorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimPrefix(c.Param("id"), "/")
		if id == "" {
			c.JSON(http.StatusBadRequest, models.Response{
				Type: http.StatusBadRequest, Title: "bad request", Detail: "adaptor id is required",
			})
			return
		}
		if err := svc.Deregister(id); err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, models.Response{Type: http.StatusOK, Title: "success", Detail: "adaptor deleted"})
	}
}

func listVhosts(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		vhosts, err := topo.ListVhosts()
		if err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vHost": vhosts})
	}
}

func createVhost(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.VhostRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Vhost == "" {
			c.JSON(http.StatusBadRequest, models.Response{
				Type: http.StatusBadRequest, Title: "bad request", Detail: "vHost is required",
			})
			return
		}
		outcome, err := topo.CreateVhost(req.Vhost)
		if err != nil {
			failure(c, err)
			return
		}
		if outcome == gateway.AlreadyExists {
			c.JSON(http.StatusConflict, models.Response{
				Type: http.StatusConflict, Title: "conflict", Detail: "vHost already exists",
			})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"vHost": req.Vhost})
	}
}

func deleteVhost(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if err := topo.DeleteVhost(name); err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vHost": name})
	}
}

func createExchange(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExchangeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ExchangeName == "" {
			c.JSON(http.StatusBadRequest, models.Response{
				Type: http.StatusBadRequest, Title: "bad request", Detail: "exchangeName is required",
			})
			return
		}
		outcome, err := topo.CreateExchange(req.ExchangeName)
		if err != nil {
			failure(c, err)
			return
		}
		if outcome == gateway.AlreadyExists {
			c.JSON(http.StatusConflict, models.Response{
				Type: http.StatusConflict, Title: "conflict", Detail: "exchange already exists",
			})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"exchange": req.ExchangeName})
	}
}

func getExchange(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimPrefix(c.Param("name"), "/")
		detail, err := topo.GetExchange(name)
		if err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func deleteExchange(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimPrefix(c.Param("name"), "/")
		if err := topo.DeleteExchange(name); err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"exchange": name})
	}
}

func listExchangeSubscribers(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimPrefix(c.Param("name"), "/")
		subscribers, err := topo.ListExchangeSubscribers(name)
		if err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, subscribers)
	}
}

func createQueue(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.QueueRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.QueueName == "" {
			c.JSON(http.StatusBadRequest, models.Response{
				Type: http.StatusBadRequest, Title: "bad request", Detail: "queueName is required",
			})
			return
		}
		outcome, err := topo.CreateQueue(req.QueueName)
		if err != nil {
			failure(c, err)
			return
		}
		if outcome == gateway.AlreadyExists {
			c.JSON(http.StatusConflict, models.Response{
				Type: http.StatusConflict, Title: "conflict", Detail: "queue already exists",
			})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"queue": req.QueueName})
	}
}

func getQueue(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := topo.GetQueue(c.Param("name"))
		if err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func deleteQueue(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if err := topo.DeleteQueue(name); err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"queue": name})
	}
}

func listQueueBindings(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		keys, err := topo.ListQueueRoutingKeys(c.Param("name"))
		if err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entities": keys})
	}
}

func bindQueue(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BindingRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ExchangeName == "" || req.QueueName == "" || len(req.Entities) == 0 {
			c.JSON(http.StatusBadRequest, models.Response{
				Type: http.StatusBadRequest, Title: "bad request", Detail: "exchangeName, queueName and entities are required",
			})
			return
		}
		if err := topo.BindQueue(req.ExchangeName, req.QueueName, req.Entities); err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"exchange": req.ExchangeName,
			"queue":    req.QueueName,
			"entities": req.Entities,
		})
	}
}

func unbindQueue(topo TopologyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BindingRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ExchangeName == "" || req.QueueName == "" || len(req.Entities) == 0 {
			c.JSON(http.StatusBadRequest, models.Response{
				Type: http.StatusBadRequest, Title: "bad request", Detail: "exchangeName, queueName and entities are required",
			})
			return
		}
		if err := topo.UnbindQueue(req.ExchangeName, req.QueueName, req.Entities); err != nil {
			failure(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"exchange": req.ExchangeName,
			"queue":    req.QueueName,
			"entities": req.Entities,
		})
	}
}
