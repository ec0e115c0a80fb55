package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"remindbot/internal/core/domain/logging"

	amqp "github.com/rabbitmq/amqp091-go"
)

type connection interface {
	openChannel() (channel, error)
	IsClosed() bool
	Close() error
}

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) openChannel() (channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// Connection dials the broker again when a channel needs it and the previous
// connection was dropped.
type Connection struct {
	url  string
	dial func(url string) (connection, error)
	log  logging.Logger
	lock sync.Mutex
	conn connection
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	return dial(url, dialAMQP, log)
}

func dial(url string, dialer func(string) (connection, error), log logging.Logger) (*Connection, error) {
	conn, err := dialer(url)
	if err != nil {
		return nil, err
	}
	return &Connection{url: url, dial: dialer, log: log, conn: conn}, nil
}

func (c *Connection) current(ctx context.Context) (connection, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.conn.IsClosed() {
		return c.conn, nil
	}
	c.log.Warning(ctx, "RabbitMQ connection is closed, dialing again.")
	conn, err := c.dial(c.url)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return conn, nil
}

// Channel opens a publishing channel that is reopened on the next publish
// after the broker closes it.
func (c *Connection) Channel() (*Channel, error) {
	conn, err := c.current(context.Background())
	if err != nil {
		return nil, err
	}
	ch, err := conn.openChannel()
	if err != nil {
		return nil, err
	}
	return &Channel{conn: c, log: c.log, ch: ch}, nil
}

func (c *Connection) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.conn.Close()
}

type Channel struct {
	conn      *Connection
	log       logging.Logger
	lock      sync.Mutex
	ch        channel
	exchanges []string
	closed    bool
}

// DeclareFanout declares a durable fanout exchange. Declared exchanges are
// declared again on every reopened channel.
func (ch *Channel) DeclareFanout(name string) error {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	if err := declareFanout(ch.ch, name); err != nil {
		return err
	}
	ch.exchanges = append(ch.exchanges, name)
	return nil
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	current, err := ch.current(ctx)
	if err != nil {
		return err
	}
	return current.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

func (ch *Channel) current(ctx context.Context) (channel, error) {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	if ch.closed {
		return nil, amqp.ErrClosed
	}
	if !ch.ch.IsClosed() {
		return ch.ch, nil
	}

	conn, err := ch.conn.current(ctx)
	if err != nil {
		return nil, err
	}
	reopened, err := conn.openChannel()
	if err != nil {
		return nil, err
	}
	for _, name := range ch.exchanges {
		if err := declareFanout(reopened, name); err != nil {
			reopened.Close()
			return nil, err
		}
	}
	ch.ch = reopened
	ch.log.Info(ctx, "RabbitMQ channel reopened.")
	return reopened, nil
}

func (ch *Channel) Close() error {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	if ch.closed {
		return amqp.ErrClosed
	}
	ch.closed = true
	return ch.ch.Close()
}

func declareFanout(ch channel, name string) error {
	return ch.ExchangeDeclare(name, amqp.ExchangeFanout, true, false, false, false, nil)
}
