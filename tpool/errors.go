// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package tpool

import "errors"

var (
	// ErrQueueFull is returned by Dispatch in ModeNonblock when the queue's
	// input FIFO has reached qsize.
	ErrQueueFull = errors.New("process queue full")

	// ErrShutdown is returned by Dispatch and NextResultWait once the queue
	// has been shut down.
	ErrShutdown = errors.New("process queue shut down")
)
