// Package reboot escalates an unresolved clock jump to a host reboot.
//
// Escalation asks the init system for an orderly reboot once, then keeps
// issuing forced reboot requests at a fixed interval. An orderly reboot can
// stall indefinitely on shutdown hooks; the forced retries guarantee that the
// host eventually goes down. Under normal operation Escalate never returns
// because the process dies with the host.
package reboot
