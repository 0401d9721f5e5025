/*
 * paperchain: confidential append-only record chains with threshold recovery
 * Copyright (C) 2024 Aleksa Sarai <cyphar@cyphar.com>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package version holds the module's build-time version string, overridden
// at release time via -ldflags "-X .../internal/version.Version=...".
package version

// Version is the current release version, set to "dev" for unreleased
// builds made straight from a checkout.
var Version = "dev"
