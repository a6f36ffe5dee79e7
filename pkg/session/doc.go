/*
Package session serializes access to participant sessions.

A session groups the records of one participant run. The Manager guards each session with a local
mutex and, optionally, a distributed lock so that several server replicas sharing one result store
never run two experiments for the same participant at once.
*/
package session
