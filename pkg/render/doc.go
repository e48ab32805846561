// Package render turns field state into server-rendered HTML. Error nodes are
// emitted only for touched, invalid fields; messages are sanitised before they
// reach the page and class names can be supplied by a go-theme selection.
package render
