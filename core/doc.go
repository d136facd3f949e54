// Package core maps host options onto the capture SDK configuration and
// sequences session start: initialize, permission acquisition, launch. Every
// failure leaves through a single EventError on the host event channel.
//
// Host adapters (command, query) and persistence (store/sql) depend on this
// package; core depends on none of them.
package core
