// Package orderroute is the session to the order-routing venue. Accepted and
// cancelled orders reported by the venue drive the blotter.
package orderroute
