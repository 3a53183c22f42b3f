/*
Package session keeps the live sessions of a server and serializes access to each one.

Every session id has its own lock, created on first use and released when no caller
holds or waits for it, so the lock table never outgrows the sessions in flight.
*/
package session
