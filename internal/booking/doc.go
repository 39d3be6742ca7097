// Package booking composes Rently bookings and quotations.
//
// A Composer looks up the vehicle model and pickup/return places, merges
// the caller's customer details with an existing customer record (looked up
// by document id for reservations only), builds the upstream payload and
// renders a Spanish (es-AR) summary of the three coverage options.
package booking
