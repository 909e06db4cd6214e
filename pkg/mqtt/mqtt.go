// Package mqtt bridges the bot to an MQTT broker. Moderation actions are
// published as events and other services can query the bot with
// request/response messages.
//
// Topics:
//
//	modbot/status                      retained "online" / "offline" (last will)
//	modbot/events/<action>             one ModerationEvent per action
//	modbot/request/<name>              Request, answered on
//	modbot/response/<name>/<corrID>    Response
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"github.com/PancyStudios/PancyModBot/pkg/models"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// TopicPrefix is the root of every topic used by the bot.
const TopicPrefix = "modbot"

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	statusOnline  = "online"
	statusOffline = "offline"
)

// StatusTopic carries the retained presence of the bot.
func StatusTopic() string {
	return TopicPrefix + "/status"
}

func requestTopic(name string) string {
	return fmt.Sprintf("%s/request/%s", TopicPrefix, name)
}

func responseTopic(name, correlationID string) string {
	return fmt.Sprintf("%s/response/%s/%s", TopicPrefix, name, correlationID)
}

// EventTopic is the topic a moderation action is published on.
func EventTopic(action string) string {
	return fmt.Sprintf("%s/events/%s", TopicPrefix, action)
}

// Request is what callers publish on modbot/request/<name>.
type Request struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// Response is published back on modbot/response/<name>/<correlationId>.
type Response struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// Client is the bot's connection to the broker.
type Client struct {
	conn     paho.Client
	clientID string

	mu       sync.Mutex
	handlers map[string]RequestHandler
}

var (
	client *Client
	once   sync.Once
)

// Init connects the global client. A broker that is down is retried in the background.
func Init(host, port, username, password, clientID string) *Client {
	once.Do(func() {
		client = NewClient(host, port, username, password, clientID)
	})
	return client
}

// Get returns the global client, nil when MQTT is disabled.
func Get() *Client {
	return client
}

// NewClient dials the broker. Subscriptions made with On are restored on every reconnect.
func NewClient(host, port, username, password, clientID string) *Client {
	c := &Client{
		clientID: clientID,
		handlers: make(map[string]RequestHandler),
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(fmt.Sprintf("%s_%s", clientID, uuid.New().String())).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(StatusTopic(), statusOffline, 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	c.conn = paho.NewClient(opts)

	// With ConnectRetry the token only completes once connected.
	token := c.conn.Connect()
	if !token.WaitTimeout(connectTimeout) {
		logger.Warn(fmt.Sprintf("Broker MQTT %s:%s no disponible, reintentando en segundo plano", host, port), "MQTT")
	} else if token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return c
}

// onConnect announces the bot and re-subscribes the request handlers.
func (c *Client) onConnect(conn paho.Client) {
	logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", c.clientID), "MQTT")
	conn.Publish(StatusTopic(), 1, true, statusOnline)

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, h := range c.handlers {
		c.subscribe(conn, name, h)
	}
}

// Destroy publishes the offline status and closes the connection.
func (c *Client) Destroy() {
	if !c.IsConnected() {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
		return
	}
	c.conn.Publish(StatusTopic(), 1, true, statusOffline).WaitTimeout(publishTimeout)
	c.conn.Disconnect(250)
	logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
}

// IsConnected returns true if connected to the broker
func (c *Client) IsConnected() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}

// PublishModeration publishes a moderation action on modbot/events/<action>.
// Delivery is best-effort and never blocks the command that triggered it.
func (c *Client) PublishModeration(ev models.ModerationEvent) {
	if !c.IsConnected() {
		logger.Debug("MQTT desconectado, evento "+ev.Action+" descartado", "MQTT")
		return
	}
	go func() {
		if err := c.Publish(EventTopic(ev.Action), 1, ev); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo publicar el evento %s: %v", ev.Action, err), "MQTT")
		}
	}()
}

// Publish marshals payload to JSON and sends it on topic.
func (c *Client) Publish(topic string, qos byte, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := c.conn.Publish(topic, qos, false, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish on %s timed out", topic)
	}
	return token.Error()
}

// RequestHandler answers one request. The payload carries the request fields
// plus "_topic", the request name.
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// handleRequest decodes a request received on receivedTopic, runs callback and
// returns the topic and message of the response.
func handleRequest(receivedTopic string, body []byte, callback RequestHandler) (string, Response, error) {
	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		return "", Response{}, fmt.Errorf("parse request: %w", err)
	}
	if request.CorrelationID == "" {
		return "", Response{}, fmt.Errorf("request on %s has no correlationId", receivedTopic)
	}

	name := strings.TrimPrefix(receivedTopic, TopicPrefix+"/request/")

	payload, _ := request.Payload.(map[string]interface{})
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["_topic"] = name

	response := Response{CorrelationID: request.CorrelationID}
	data, err := callback(payload)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}
	return responseTopic(name, request.CorrelationID), response, nil
}

// On serves requests published on modbot/request/<name>.
func (c *Client) On(name string, callback RequestHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = callback
	if c.IsConnected() {
		c.subscribe(c.conn, name, callback)
	}
}

func (c *Client) subscribe(conn paho.Client, name string, callback RequestHandler) {
	filter := requestTopic(name)
	token := conn.Subscribe(filter, 1, func(_ paho.Client, msg paho.Message) {
		// paho hands a message to every matching route; ignore the ones meant for others.
		if !topicMatch(filter, msg.Topic()) {
			return
		}
		respTopic, response, err := handleRequest(msg.Topic(), msg.Payload(), callback)
		if err != nil {
			logger.Warn(fmt.Sprintf("Petición MQTT inválida: %v", err), "MQTT")
			return
		}
		if err := c.Publish(respTopic, 0, response); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo responder en %s: %v", respTopic, err), "MQTT")
		}
	})

	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error suscribiendo a %s: %v", filter, token.Error()), "MQTT")
	}
}

// topicMatch checks if a received topic matches a filter.
// '+' matches exactly one level, '#' matches the rest (including nothing).
func topicMatch(pattern, topic string) bool {
	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	for i, p := range patternParts {
		if p == "#" {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if p != "+" && p != topicParts[i] {
			return false
		}
	}
	return len(patternParts) == len(topicParts)
}
