// Copyright 2021 FerretDB Inc.
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

// Package backends provides common interfaces and code for all backend implementations.
//
// # Design principles.
//
//  1. Backends only store documents. They never evaluate filters, updates or projections;
//     the handler fetches the full candidate set with Collection.Query and runs the
//     query engine over it.
//  2. Backend objects are stateful and should be closed.
//     Database and Collection objects are stateless handles; creating them
//     does not create the database or collection itself.
//     Collections (and their databases) are created implicitly on the first insert.
//  3. Contexts are per-operation and should not be stored.
//  4. Errors returned by methods could be nil, *Error, or some other opaque error type.
//     *Error values can't be wrapped or be present anywhere in the error chain.
//     Contracts enforce *Error codes; they are not documented in the code comments
//     but are visible in the contract's code (to avoid duplication).
//  5. Documents passed to and returned from backends are owned by the caller.
//     Backends must not keep references to them.
package backends
