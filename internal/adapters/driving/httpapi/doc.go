// Package httpapi exposes the task list and the agent over a JSON HTTP API.
package httpapi
