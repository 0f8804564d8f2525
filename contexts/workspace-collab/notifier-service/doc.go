// Package notifierservice decides which subscribed users receive a
// notification for each document or collection event, and why the rest
// are suppressed.
//
// The module owns no tables except the notification outbox. It reads the
// workspace tables (documents, collections, teams, subscriptions, views)
// through ports, applies the per-event suppression policy, and hands the
// surviving delivery requests to the dispatcher. Sending is external.
package notifierservice
