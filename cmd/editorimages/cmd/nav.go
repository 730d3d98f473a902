package cmd

import (
	"github.com/nfrund/editorimages/internal/domain"
	"github.com/nfrund/editorimages/internal/router"
)

// trackingNavigator forwards to the router and reports every screen change,
// letting a command wait for the controller it drives to hand over.
type trackingNavigator struct {
	*router.Router
	changes chan domain.Screen
}

func newTrackingNavigator(r *router.Router) *trackingNavigator {
	return &trackingNavigator{Router: r, changes: make(chan domain.Screen, 4)}
}

func (n *trackingNavigator) Show(screen domain.Screen) {
	n.Router.Show(screen)
	n.report()
}

func (n *trackingNavigator) Present(screen domain.Screen) {
	n.Router.Present(screen)
	n.report()
}

func (n *trackingNavigator) Dismiss() {
	n.Router.Dismiss()
	n.report()
}

func (n *trackingNavigator) report() {
	select {
	case n.changes <- n.Current():
	default:
	}
}
