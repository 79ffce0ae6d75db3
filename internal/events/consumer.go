package events

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"housy-backend/internal/shared/metrics"
	"housy-backend/internal/shared/telemetry"
)

const (
	defaultConcurrency     = 4
	defaultWaitSeconds     = 20
	defaultVisibility      = 300
	defaultShutdownTimeout = 30 * time.Second
	defaultHandlerTimeout  = 2 * time.Minute
	defaultErrorBackoff    = 2 * time.Second
	maxBatch               = 10
)

// ReceiveAPI is the subset of the SQS client a Consumer needs.
type ReceiveAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// HandlerFunc processes one event. A returned error leaves the message on the
// queue for redelivery after the visibility timeout.
type HandlerFunc func(ctx context.Context, evt Event) error

// Consumer long-polls an SQS queue and dispatches events by type. Events with
// no registered handler are acknowledged and dropped.
type Consumer struct {
	Client          ReceiveAPI
	QueueURL        string
	Handlers        map[string]HandlerFunc
	Concurrency     int
	WaitSeconds     int32
	Visibility      int32
	ShutdownTimeout time.Duration
	// HandlerTimeout bounds one message. Handlers are detached from Run's
	// context so a shutdown lets in-flight work finish.
	HandlerTimeout time.Duration
	// ErrorBackoff is the pause after a failed receive.
	ErrorBackoff time.Duration
}

// Run polls until ctx is cancelled, then waits up to ShutdownTimeout for
// in-flight handlers.
func (c *Consumer) Run(ctx context.Context) {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	telemetry.Info("events.consumer.started", map[string]any{
		"queue":       c.QueueURL,
		"concurrency": concurrency,
	})

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := c.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.QueueURL),
			MaxNumberOfMessages: maxBatch,
			WaitTimeSeconds:     orDefault(c.WaitSeconds, defaultWaitSeconds),
			VisibilityTimeout:   orDefault(c.Visibility, defaultVisibility),
			AttributeNames:      []types.QueueAttributeName{types.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("events.consumer.receive_failed", map[string]any{"error": err.Error()})
			select {
			case <-ctx.Done():
				break pollLoop
			case <-time.After(durationOr(c.ErrorBackoff, defaultErrorBackoff)):
			}
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m types.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), durationOr(c.HandlerTimeout, defaultHandlerTimeout))
				defer cancel()
				c.HandleMessage(hctx, m)
			}(msg)
		}
	}

	timeout := durationOr(c.ShutdownTimeout, defaultShutdownTimeout)
	telemetry.Info("events.consumer.draining", map[string]any{"timeout": timeout.String()})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		telemetry.Warn("events.consumer.shutdown_timeout", nil)
	}
}

// HandleMessage decodes and dispatches a single message. Undecodable messages
// are deleted since redelivery cannot fix them.
func (c *Consumer) HandleMessage(ctx context.Context, msg types.Message) {
	fields := messageFields(msg)
	body := strings.TrimSpace(aws.ToString(msg.Body))
	if body == "" {
		telemetry.Error("events.consumer.empty_body", fields)
		c.ack(ctx, msg, fields, "unrecoverable")
		return
	}

	evt, err := Decode([]byte(body))
	if err == nil && strings.TrimSpace(evt.Type) == "" {
		err = errors.New("event type is missing")
	}
	if err != nil {
		fields["error"] = err.Error()
		telemetry.Error("events.consumer.decode_failed", fields)
		c.ack(ctx, msg, fields, "unrecoverable")
		return
	}

	fields["type"] = evt.Type
	fields["entity_id"] = evt.EntityID
	if evt.RequestID != "" {
		fields["request_id"] = evt.RequestID
		ctx = telemetry.WithRequestID(ctx, evt.RequestID)
	}

	handler, ok := c.Handlers[evt.Type]
	if !ok {
		c.ack(ctx, msg, fields, "ignored")
		return
	}

	if err := handler(ctx, evt); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("events.consumer.handler_failed", fields)
		metrics.IncEventConsumed(evt.Type, "failed")
		return
	}
	if c.ack(ctx, msg, fields, "completed") {
		telemetry.Info("events.consumer.completed", fields)
	}
}

func (c *Consumer) ack(ctx context.Context, msg types.Message, fields map[string]any, result string) bool {
	eventType, _ := fields["type"].(string)
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields["error"] = "missing receipt handle"
		telemetry.Error("events.consumer.delete_failed", fields)
		return false
	}
	if _, err := c.Client.DeleteMessage(context.WithoutCancel(ctx), &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.QueueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("events.consumer.delete_failed", fields)
		return false
	}
	metrics.IncEventConsumed(eventType, result)
	return true
}

func messageFields(msg types.Message) map[string]any {
	return map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
}

func receiveCount(msg types.Message) int {
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func durationOr(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func orDefault(v, def int32) int32 {
	if v <= 0 {
		return def
	}
	return v
}
