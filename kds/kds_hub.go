package kds

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/snytra/restaurant-app/models"
)

// Event types
const (
	EventOrderUpdate       = "order_update"
	EventKitchenUpdate     = "kitchen_update"
	EventTableCreate       = "table_create"
	EventTableUpdate       = "table_update"
	EventTableDelete       = "table_delete"
	EventStaffNotif        = "staff_notification"
	EventPaymentUpdate     = "payment_update"
	EventPaymentPending    = "payment_pending"
	EventPaymentSuccess    = "payment_success"
	EventReservationCreate = "reservation_create"
	EventReservationUpdate = "reservation_update"
	EventDashboardUpdate   = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client realtime (chef, staff, admin).
// Fan-out bersifat fire-and-forget: client yang gagal ditulis dilewati.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> mendaftarkan connection dengan role-nya
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient -> melepas connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate -> update order ke semua client
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{Event: EventOrderUpdate, Data: order})
}

// BroadcastKitchenUpdate -> update untuk chef
func BroadcastKitchenUpdate(data interface{}) {
	broadcast(Message{Event: EventKitchenUpdate, Data: data})
}

// BroadcastTableCreate / Update / Delete -> perubahan meja
func BroadcastTableCreate(table models.Table) {
	broadcast(Message{Event: EventTableCreate, Data: table})
}

func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

func BroadcastTableDelete(table models.Table) {
	broadcast(Message{Event: EventTableDelete, Data: table})
}

// BroadcastStaffNotification -> notifikasi teks untuk staff
func BroadcastStaffNotification(message string) {
	broadcast(Message{Event: EventStaffNotif, Data: message})
}

// BroadcastPaymentUpdate -> update status pembayaran
func BroadcastPaymentUpdate(payment models.Payment, order models.Order) {
	broadcast(Message{
		Event: EventPaymentUpdate,
		Data: map[string]interface{}{
			"payment": payment,
			"order":   order,
		},
	})
}

func BroadcastPaymentPending(payment models.Payment) {
	broadcast(Message{Event: EventPaymentPending, Data: payment})
}

func BroadcastPaymentSuccess(payment models.Payment) {
	broadcast(Message{Event: EventPaymentSuccess, Data: payment})
}

// BroadcastReservationCreate -> reservasi baru masuk
func BroadcastReservationCreate(reservation models.Reservation) {
	broadcast(Message{Event: EventReservationCreate, Data: reservation})
}

// BroadcastReservationUpdate -> status/meja reservasi berubah
func BroadcastReservationUpdate(reservation models.Reservation) {
	broadcast(Message{Event: EventReservationUpdate, Data: reservation})
}

// BroadcastDashboardUpdate -> refresh statistik dashboard
func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{Event: EventDashboardUpdate, Data: data})
}

// BroadcastMessage -> broadcast pesan umum
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling broadcast message: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
			continue
		}
	}
}
