// Package notification pushes dispatch alerts to subscribed operators
// over web push.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"emergency-dispatch-backend/internal/model"
)

// Event distinguishes what happened to the dispatch.
type Event string

const (
	// EventDispatched fires when a unit is sent out.
	EventDispatched Event = "dispatched"
	// EventReleased fires when a dispatch is resolved and the unit freed.
	EventReleased Event = "released"
)

// Job identifies one dispatch to alert operators about.
type Job struct {
	DispatchID int64
	Event      Event
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending dispatch alerts.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size), // Buffered channel
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			log.Printf("Worker %d processing dispatch %d (%s)", id, job.DispatchID, job.Event)
			wp.alertForDispatch(ctx, job)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Notify sends a job to the worker pool.
func (wp *WorkerPool) Notify(job Job) {
	wp.jobs <- job
}

// alert is the push payload shown to dispatch operators.
type alert struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Service    string `json:"service"`
	Event      string `json:"event"`
	DispatchID int64  `json:"dispatch_id"`
	CaseNumber string `json:"case_number,omitempty"`
}

func (wp *WorkerPool) alertForDispatch(ctx context.Context, job Job) {
	// Push is optional; without VAPID options there is nothing to send.
	if wp.webpush == nil {
		return
	}

	var dispatch model.Dispatch
	if err := wp.db.WithContext(ctx).First(&dispatch, job.DispatchID).Error; err != nil {
		log.Printf("Error fetching dispatch %d: %v", job.DispatchID, err)
		return
	}

	unitLabel := fmt.Sprintf("Unit %d", dispatch.UnitID)
	var unit model.Unit
	if err := wp.db.WithContext(ctx).
		Select("call_sign").
		First(&unit, dispatch.UnitID).Error; err != nil {
		log.Printf("Error fetching unit %d: %v", dispatch.UnitID, err)
	} else if unit.CallSign != "" {
		unitLabel = unit.CallSign
	}

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("services = '' OR services LIKE ?", "%"+string(dispatch.Service)+"%").
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for dispatch %d: %v", job.DispatchID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	msg := alert{
		Service:    string(dispatch.Service),
		Event:      string(job.Event),
		DispatchID: dispatch.ID,
		CaseNumber: dispatch.CaseNumber,
	}
	switch job.Event {
	case EventReleased:
		msg.Title = fmt.Sprintf("%s unit released", dispatch.Service)
		msg.Body = fmt.Sprintf("%s is back in service", unitLabel)
	default:
		msg.Title = fmt.Sprintf("%s unit dispatched", dispatch.Service)
		msg.Body = fmt.Sprintf("%s en route, ETA %d minutes", unitLabel, dispatch.ETAMinutes)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error encoding alert for dispatch %d: %v", job.DispatchID, err)
		return
	}

	log.Printf("Sending %d alerts for dispatch %d", len(subscriptions), job.DispatchID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
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
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
