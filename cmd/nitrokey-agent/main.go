// libnitrokey: a host-side driver and TUI for Nitrokey Pro/Storage devices
// Copyright (C) 2026  The libnitrokey authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vinaebizs/libnitrokey/internal/driver/device"
)

var (
	listenAddr = flag.String("listen", ":8787", "address to serve the remote Nitrokey agent on")
	autoConnect = flag.Bool("auto-connect", true, "connect to the first Nitrokey found on startup")
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nitrokey_agent_commands_total",
		Help: "Total commands dispatched to the connected device, by name and outcome.",
	}, []string{"command", "outcome"})
)

// agent binds a Manager to an HTTP surface, translating a small set of
// catalog commands (see dispatch) into POST /commands/{name} calls so
// callers without direct USB access can drive a device through this
// process.
type agent struct {
	mgr *device.Manager
}

func main() {
	flag.Parse()

	a := &agent{mgr: device.NewManager()}
	if *autoConnect {
		if err := device.ConnectAuto(a.mgr); err != nil {
			log.Printf("nitrokey-agent: no device connected at startup: %v", err)
		}
	}

	r := gin.Default()
	r.GET("/healthz", a.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/commands/:name", a.handleCommand)

	log.Printf("nitrokey-agent: listening on %s", *listenAddr)
	if err := r.Run(*listenAddr); err != nil {
		log.Fatalf("nitrokey-agent: server exited: %v", err)
	}
}

func (a *agent) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected": a.mgr.Connected(),
		"model":     a.mgr.Model().String(),
	})
}

type commandRequest struct {
	Args map[string]string `json:"args"`
}

type commandResponse struct {
	Result map[string]string `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// handleCommand dispatches a small set of read-mostly commands useful
// for remote status checks; full slot/PIN management is done directly
// against the device (cmd/nitrokey-tui), not relayed over this agent.
func (a *agent) handleCommand(c *gin.Context) {
	name := c.Param("name")
	var req commandRequest
	_ = c.ShouldBindJSON(&req)

	result, err := a.dispatch(name, req.Args)
	if err != nil {
		commandsTotal.WithLabelValues(name, "error").Inc()
		c.JSON(http.StatusOK, commandResponse{Error: err.Error()})
		return
	}
	commandsTotal.WithLabelValues(name, "ok").Inc()
	c.JSON(http.StatusOK, commandResponse{Result: result})
}

func (a *agent) dispatch(name string, args map[string]string) (map[string]string, error) {
	switch name {
	case "GetStatus":
		raw, err := a.mgr.GetStatus()
		if err != nil {
			return nil, err
		}
		return map[string]string{"raw_len": strconv.Itoa(len(raw))}, nil
	case "GetSerialNumber":
		serial, err := a.mgr.GetSerialNumber()
		if err != nil {
			return nil, err
		}
		return map[string]string{"serial": serial}, nil
	case "GetPasswordRetryCount":
		n, err := a.mgr.GetPasswordRetryCount()
		if err != nil {
			return nil, err
		}
		return map[string]string{"retries": strconv.Itoa(int(n))}, nil
	default:
		return nil, fmt.Errorf("unknown remote command: %s", name)
	}
}
