// Package notification fans committed reservation changes out to web push
// subscribers on a small pool of background workers.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"table-reservation-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool delivers reservation changes to every stored push subscription.
type WorkerPool struct {
	size    int
	jobs    chan model.Change
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	log     *slog.Logger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool. The job queue holds a few changes
// per worker; Notify drops changes once it is full.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, log *slog.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.Change, size*8),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines. They stop when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.log.Debug("Notification worker started", "worker", id)
	for {
		select {
		case change := <-wp.jobs:
			wp.log.Debug("Notification worker processing change", "worker", id, "kind", change.Kind, "id", change.Reservation.ID)
			wp.broadcast(ctx, change)
		case <-ctx.Done():
			wp.log.Debug("Notification worker shutting down", "worker", id)
			return
		}
	}
}

// Notify queues change for delivery without blocking the caller.
func (wp *WorkerPool) Notify(change model.Change) {
	select {
	case wp.jobs <- change:
	default:
		wp.log.Warn("Notification queue full, dropping change", "kind", change.Kind, "id", change.Reservation.ID)
	}
}

// Message renders the user-facing text pushed for change.
func Message(change model.Change) string {
	r := change.Reservation
	switch change.Kind {
	case model.ChangeCreated:
		return fmt.Sprintf("Nueva reserva: %s, mesa %s, %s %s (%d personas)", r.ClientName, r.Table, r.Date, r.Time, r.People)
	case model.ChangeUpdated:
		return fmt.Sprintf("Reserva modificada: %s, mesa %s, %s %s (%d personas)", r.ClientName, r.Table, r.Date, r.Time, r.People)
	case model.ChangeDeleted:
		return fmt.Sprintf("Reserva cancelada: %s, mesa %s, %s %s", r.ClientName, r.Table, r.Date, r.Time)
	case model.ChangeCleared:
		return "Se han eliminado todas las reservas"
	}
	return string(change.Kind)
}

func (wp *WorkerPool) broadcast(ctx context.Context, change model.Change) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		wp.log.Error("Error fetching push subscriptions", "error", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	wp.log.Info("Sending notifications", "count", len(subscriptions), "kind", change.Kind)
	message := []byte(Message(change))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, message)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Error("Error sending notification", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions are removed.
	if resp.StatusCode == http.StatusGone {
		wp.log.Info("Subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.log.Error("Failed to delete expired subscription", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
