package models

import "time"

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Location struct {
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Address     string     `json:"address"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

type DeliveryItem struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Weight      float64 `json:"weight"`
}

type DeliveryRecord struct {
	ID                string         `json:"id"`
	StoreID           string         `json:"storeId,omitempty"`
	TrackingNumber    string         `json:"trackingNumber"`
	OrderNumber       string         `json:"orderNumber"`
	Customer          *Customer      `json:"customer,omitempty"`
	CarrierName       string         `json:"carrierName"`
	Status            DeliveryStatus `json:"status"`
	CreatedAt         time.Time      `json:"createdAt"`
	EstimatedDelivery *time.Time     `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time     `json:"actualDelivery,omitempty"`
	CurrentLocation   *Location      `json:"currentLocation,omitempty"`
	Items             []DeliveryItem `json:"items,omitempty"`
}

// CustomerName is safe on records without a customer.
func (d *DeliveryRecord) CustomerName() string {
	if d == nil || d.Customer == nil {
		return ""
	}
	return d.Customer.Name
}

// LastUpdated is the freshest known timestamp of the record.
func (d *DeliveryRecord) LastUpdated() *time.Time {
	if d == nil {
		return nil
	}
	if d.CurrentLocation != nil && d.CurrentLocation.LastUpdated != nil {
		return d.CurrentLocation.LastUpdated
	}
	if d.ActualDelivery != nil {
		return d.ActualDelivery
	}
	if d.CreatedAt.IsZero() {
		return nil
	}
	t := d.CreatedAt
	return &t
}

type TrackingEvent struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Status      EventLabel `json:"status"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
}

type DeliveryPartner struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

type MapPoint struct {
	DeliveryID     string         `json:"deliveryId"`
	TrackingNumber string         `json:"trackingNumber"`
	Status         DeliveryStatus `json:"status"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Address        string         `json:"address"`
}

// Summary holds aggregates over the current collection.
type Summary struct {
	Total           int                    `json:"total"`
	PerStatusCounts map[DeliveryStatus]int `json:"perStatusCounts"`
}
