package gateway

import (
	"context"
	"net/http"

	"campus-rms-console/internal/model"
)

func (c *Client) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return list[model.Booking](ctx, c, "bookings.list", "/bookings/")
}

// ListUpcomingBookings lists bookings from today on that are not rejected.
func (c *Client) ListUpcomingBookings(ctx context.Context) ([]model.Booking, error) {
	return list[model.Booking](ctx, c, "bookings.upcoming", "/bookings/upcoming/")
}

func (c *Client) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "bookings.get", http.MethodGet, idPath("bookings", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBooking(ctx context.Context, in model.BookingInput) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "bookings.create", http.MethodPost, "/bookings/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBooking(ctx context.Context, id int64, in model.BookingInput) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "bookings.update", http.MethodPut, idPath("bookings", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	return c.do(ctx, "bookings.delete", http.MethodDelete, idPath("bookings", id), nil, nil)
}

func (c *Client) ApproveBooking(ctx context.Context, id int64) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "bookings.approve", http.MethodPost, idPath("bookings", id, "approve"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RejectBooking(ctx context.Context, id int64) (*model.Booking, error) {
	var out model.Booking
	if err := c.do(ctx, "bookings.reject", http.MethodPost, idPath("bookings", id, "reject"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
