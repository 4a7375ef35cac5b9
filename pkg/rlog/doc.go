// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rlog implements an embedded remote-logging dispatcher: a bounded
// in-memory record queue, a multi-sink fan-out with per-sink liveness
// tracking, and a disk-spool interlock that absorbs overflow while every
// configured sink is unreachable and replays it, in submission order, once
// a sink comes back.
//
// A Server is the single opaque handle that owns the queue, the sink
// registry, and the spool; it is safe to construct more than one in the
// same process (there is no package-level singleton state). Application
// code submits records through a Producer handle obtained from Server.
package rlog
