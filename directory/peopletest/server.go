// ABOUTME: In-memory fake of the People API contacts and contact group endpoints for tests
// ABOUTME: Serves over httptest with etags, paging, search limits, memberships and error injection

package peopletest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// SearchMaxPageSize mirrors the service limit for searchContacts.
const SearchMaxPageSize = 30

var readOnlyFields = map[string]bool{"photos": true, "coverPhotos": true, "ageRanges": true, "metadata": true}

type failure struct {
	method, path string
	code         int
	status, msg  string
}

// Server is a fake People API.
type Server struct {
	*httptest.Server

	// SearchLimit caps searchContacts results below the requested page size when > 0.
	SearchLimit int

	mu         sync.Mutex
	seq        int
	contacts   map[string]*people.Person
	order      []string
	groups     map[string]*people.ContactGroup
	groupOrder []string
	blobs      map[string][]byte
	photos     map[string][]byte
	failures   []failure
	calls      []string
}

// New starts a fake server seeded with the starred and myContacts system groups.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		contacts: map[string]*people.Person{},
		groups:   map[string]*people.ContactGroup{},
		blobs:    map[string][]byte{},
		photos:   map[string][]byte{},
	}
	s.addGroup("contactGroups/starred", "starred", "Starred", "SYSTEM_CONTACT_GROUP")
	s.addGroup("contactGroups/myContacts", "myContacts", "My Contacts", "SYSTEM_CONTACT_GROUP")
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Service returns a People client pointed at the fake.
func (s *Server) Service(t testing.TB) *people.Service {
	t.Helper()
	svc, err := people.NewService(context.Background(),
		option.WithEndpoint(s.URL+"/"),
		option.WithHTTPClient(s.Client()),
	)
	if err != nil {
		t.Fatalf("failed to create people service: %v", err)
	}
	return svc
}

// AddContact stores a person and returns its resource name.
func (s *Server) AddContact(p *people.Person) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeNew(p)
}

// AddGroup creates a user contact group and returns its resource name.
func (s *Server) AddGroup(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	rn := fmt.Sprintf("contactGroups/g%d", s.seq)
	s.addGroup(rn, name, name, "USER_CONTACT_GROUP")
	return rn
}

// Contact returns a copy of the stored person, nil if missing.
func (s *Server) Contact(rn string) *people.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.contacts[rn]
	if !ok {
		return nil
	}
	return clonePerson(p)
}

// ContactCount returns the number of stored contacts.
func (s *Server) ContactCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

// Group returns a copy of the stored group, nil if missing.
func (s *Server) Group(rn string) *people.ContactGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[rn]
	if !ok {
		return nil
	}
	out := *g
	out.MemberResourceNames = s.membersOf(rn)
	out.MemberCount = int64(len(out.MemberResourceNames))
	return &out
}

// GroupByName finds a group resource name by name, "" if missing.
func (s *Server) GroupByName(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rn := range s.groupOrder {
		if s.groups[rn].Name == name {
			return rn
		}
	}
	return ""
}

// Photo returns the bytes uploaded for a contact.
func (s *Server) Photo(rn string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photos[rn]
}

// Blob serves data at a URL on the fake and returns that URL.
func (s *Server) Blob(name string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs["/blobs/"+name] = data
	return s.URL + "/blobs/" + name
}

// Fail makes the next request matching method and path answer with an error.
func (s *Server) Fail(method, path string, code int, status, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, path: path, code: code, status: status, msg: message})
}

// Calls counts requests with the given method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

func (s *Server) addGroup(rn, name, formatted, groupType string) {
	s.groups[rn] = &people.ContactGroup{
		ResourceName:  rn,
		Etag:          "g-etag-1",
		Name:          name,
		FormattedName: formatted,
		GroupType:     groupType,
	}
	s.groupOrder = append(s.groupOrder, rn)
}

func (s *Server) nextEtag() string {
	s.seq++
	return fmt.Sprintf("etag-%d", s.seq)
}

func (s *Server) storeNew(p *people.Person) string {
	p = clonePerson(p)
	s.seq++
	id := fmt.Sprintf("c%d", s.seq)
	p.ResourceName = "people/" + id
	p.Etag = s.nextEtag()
	p.Metadata = &people.PersonMetadata{Sources: []*people.Source{{
		Type:       "CONTACT",
		Id:         id,
		Etag:       p.Etag,
		UpdateTime: time.Now().UTC().Format(time.RFC3339),
	}}}
	s.contacts[p.ResourceName] = p
	s.order = append(s.order, p.ResourceName)
	return p.ResourceName
}

func (s *Server) touch(p *people.Person) {
	p.Etag = s.nextEtag()
	if p.Metadata != nil && len(p.Metadata.Sources) > 0 {
		p.Metadata.Sources[0].Etag = p.Etag
		p.Metadata.Sources[0].UpdateTime = time.Now().UTC().Format(time.RFC3339)
	}
}

func (s *Server) membersOf(group string) []string {
	var out []string
	for _, rn := range s.order {
		for _, m := range s.contacts[rn].Memberships {
			if m.ContactGroupMembership != nil && m.ContactGroupMembership.ContactGroupResourceName == group {
				out = append(out, rn)
				break
			}
		}
	}
	return out
}

func clonePerson(p *people.Person) *people.Person {
	data, _ := json.Marshal(p)
	var out people.Person
	_ = json.Unmarshal(data, &out)
	return &out
}

// project keeps only the fields named in mask, plus the identity fields the
// service always returns.
func project(p *people.Person, mask string) *people.Person {
	data, _ := json.Marshal(p)
	var all map[string]json.RawMessage
	_ = json.Unmarshal(data, &all)
	kept := map[string]json.RawMessage{}
	for _, key := range append(strings.Split(mask, ","), "resourceName", "etag") {
		key = strings.TrimSpace(key)
		if v, ok := all[key]; ok {
			kept[key] = v
		}
	}
	data, _ = json.Marshal(kept)
	var out people.Person
	_ = json.Unmarshal(data, &out)
	return &out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, status, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": msg, "status": status},
	})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := r.URL.Path
	s.calls = append(s.calls, r.Method+" "+path)

	for i, f := range s.failures {
		if f.method == r.Method && f.path == path {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			writeError(w, f.code, f.status, f.msg)
			return
		}
	}

	if data, ok := s.blobs[path]; ok && r.Method == http.MethodGet {
		_, _ = w.Write(data)
		return
	}

	if !strings.HasPrefix(path, "/v1/") {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown path")
		return
	}
	rest := strings.TrimPrefix(path, "/v1/")

	switch {
	case rest == "people/me/connections" && r.Method == http.MethodGet:
		s.listConnections(w, r)
	case rest == "people:searchContacts" && r.Method == http.MethodGet:
		s.searchContacts(w, r)
	case rest == "people:createContact" && r.Method == http.MethodPost:
		s.createContact(w, r)
	case strings.HasPrefix(rest, "people/") && strings.HasSuffix(rest, ":updateContact") && r.Method == http.MethodPatch:
		s.updateContact(w, r, strings.TrimSuffix(rest, ":updateContact"))
	case strings.HasPrefix(rest, "people/") && strings.HasSuffix(rest, ":deleteContact") && r.Method == http.MethodDelete:
		s.deleteContact(w, strings.TrimSuffix(rest, ":deleteContact"))
	case strings.HasPrefix(rest, "people/") && strings.HasSuffix(rest, ":updateContactPhoto") && r.Method == http.MethodPatch:
		s.updatePhoto(w, r, strings.TrimSuffix(rest, ":updateContactPhoto"))
	case strings.HasPrefix(rest, "people/") && strings.HasSuffix(rest, ":deleteContactPhoto") && r.Method == http.MethodDelete:
		s.deletePhoto(w, strings.TrimSuffix(rest, ":deleteContactPhoto"))
	case strings.HasPrefix(rest, "people/") && r.Method == http.MethodGet:
		s.getContact(w, r, rest)
	case rest == "contactGroups" && r.Method == http.MethodGet:
		s.listGroups(w, r)
	case rest == "contactGroups" && r.Method == http.MethodPost:
		s.createGroup(w, r)
	case strings.HasPrefix(rest, "contactGroups/") && strings.HasSuffix(rest, "/members:modify") && r.Method == http.MethodPost:
		s.modifyMembers(w, r, strings.TrimSuffix(rest, "/members:modify"))
	case strings.HasPrefix(rest, "contactGroups/") && r.Method == http.MethodGet:
		s.getGroup(w, r, rest)
	case strings.HasPrefix(rest, "contactGroups/") && r.Method == http.MethodPut:
		s.updateGroup(w, r, rest)
	case strings.HasPrefix(rest, "contactGroups/") && r.Method == http.MethodDelete:
		s.deleteGroup(w, r, rest)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown method "+r.Method+" "+path)
	}
}

func pageBounds(r *http.Request, total int, defaultSize, maxSize int) (start, end int, next string, ok bool) {
	size := defaultSize
	if v := r.URL.Query().Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxSize {
			return 0, 0, "", false
		}
		if n > 0 {
			size = n
		}
	}
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 || n > total {
			return 0, 0, "", false
		}
		start = n
	}
	end = start + size
	if end > total {
		end = total
	}
	if end < total {
		next = strconv.Itoa(end)
	}
	return start, end, next, true
}

func (s *Server) listConnections(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("personFields") == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "personFields mask is required")
		return
	}
	start, end, next, ok := pageBounds(r, len(s.order), 100, 1000)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid paging parameters")
		return
	}
	resp := &people.ListConnectionsResponse{NextPageToken: next, TotalItems: int64(len(s.order))}
	mask := r.URL.Query().Get("personFields")
	for _, rn := range s.order[start:end] {
		resp.Connections = append(resp.Connections, project(s.contacts[rn], mask))
	}
	writeJSON(w, resp)
}

func matches(p *people.Person, q string) bool {
	var hay []string
	for _, n := range p.Names {
		hay = append(hay, n.DisplayName, n.GivenName, n.FamilyName)
	}
	for _, e := range p.EmailAddresses {
		hay = append(hay, e.Value)
	}
	for _, ph := range p.PhoneNumbers {
		hay = append(hay, ph.Value)
	}
	for _, o := range p.Organizations {
		hay = append(hay, o.Name)
	}
	for _, h := range hay {
		if strings.Contains(strings.ToLower(h), q) {
			return true
		}
	}
	return false
}

func (s *Server) searchContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("readMask") == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "readMask is required")
		return
	}
	size := 10
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > SearchMaxPageSize {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "pageSize must be between 0 and 30")
			return
		}
		if n > 0 {
			size = n
		}
	}
	if s.SearchLimit > 0 && s.SearchLimit < size {
		size = s.SearchLimit
	}

	resp := &people.SearchResponse{}
	query := strings.ToLower(strings.TrimSpace(q.Get("query")))
	if query != "" {
		for _, rn := range s.order {
			if len(resp.Results) >= size {
				break
			}
			if p := s.contacts[rn]; matches(p, query) {
				resp.Results = append(resp.Results, &people.SearchResult{Person: project(p, q.Get("readMask"))})
			}
		}
	}
	writeJSON(w, resp)
}

func (s *Server) getContact(w http.ResponseWriter, r *http.Request, rn string) {
	if r.URL.Query().Get("personFields") == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "personFields mask is required")
		return
	}
	p, ok := s.contacts[rn]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	writeJSON(w, project(p, r.URL.Query().Get("personFields")))
}

func (s *Server) createContact(w http.ResponseWriter, r *http.Request) {
	var p people.Person
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	if p.Metadata != nil && len(p.Metadata.Sources) > 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "metadata is read only")
		return
	}
	for _, m := range p.Memberships {
		if m.ContactGroupMembership == nil {
			continue
		}
		if _, ok := s.groups[m.ContactGroupMembership.ContactGroupResourceName]; !ok {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "unknown contact group")
			return
		}
	}
	rn := s.storeNew(&p)
	writeJSON(w, clonePerson(s.contacts[rn]))
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request, rn string) {
	stored, ok := s.contacts[rn]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	mask := r.URL.Query().Get("updatePersonFields")
	if mask == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "updatePersonFields mask is required")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(body, &incoming); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	var etag string
	_ = json.Unmarshal(incoming["etag"], &etag)
	if etag != stored.Etag {
		writeError(w, http.StatusBadRequest, "FAILED_PRECONDITION", "Request person.etag is different than the current person.etag. Clear local cache and get the latest person.")
		return
	}

	current, _ := json.Marshal(stored)
	var merged map[string]json.RawMessage
	_ = json.Unmarshal(current, &merged)
	for _, field := range strings.Split(mask, ",") {
		if readOnlyFields[field] {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "field "+field+" cannot be updated")
			return
		}
		if v, ok := incoming[field]; ok {
			merged[field] = v
		} else {
			delete(merged, field)
		}
	}
	data, _ := json.Marshal(merged)
	var updated people.Person
	_ = json.Unmarshal(data, &updated)
	s.touch(&updated)
	s.contacts[rn] = &updated
	writeJSON(w, clonePerson(&updated))
}

func (s *Server) deleteContact(w http.ResponseWriter, rn string) {
	if _, ok := s.contacts[rn]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	s.removeContact(rn)
	writeJSON(w, &people.Empty{})
}

func (s *Server) removeContact(rn string) {
	delete(s.contacts, rn)
	delete(s.photos, rn)
	for i, o := range s.order {
		if o == rn {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Server) updatePhoto(w http.ResponseWriter, r *http.Request, rn string) {
	p, ok := s.contacts[rn]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	var req people.UpdateContactPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.PhotoBytes)
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "photoBytes must be base64")
		return
	}
	s.photos[rn] = data
	p.Photos = []*people.Photo{{Url: s.URL + "/photos/" + strings.TrimPrefix(rn, "people/")}}
	s.touch(p)
	writeJSON(w, &people.UpdateContactPhotoResponse{Person: clonePerson(p)})
}

func (s *Server) deletePhoto(w http.ResponseWriter, rn string) {
	p, ok := s.contacts[rn]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	delete(s.photos, rn)
	p.Photos = nil
	s.touch(p)
	writeJSON(w, &people.DeleteContactPhotoResponse{Person: clonePerson(p)})
}

func (s *Server) groupView(rn string, maxMembers int) *people.ContactGroup {
	g := *s.groups[rn]
	members := s.membersOf(rn)
	g.MemberCount = int64(len(members))
	if maxMembers > 0 {
		if len(members) > maxMembers {
			members = members[:maxMembers]
		}
		g.MemberResourceNames = members
	}
	return &g
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	start, end, next, ok := pageBounds(r, len(s.groupOrder), 30, 1000)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid paging parameters")
		return
	}
	resp := &people.ListContactGroupsResponse{NextPageToken: next, TotalItems: int64(len(s.groupOrder))}
	for _, rn := range s.groupOrder[start:end] {
		resp.ContactGroups = append(resp.ContactGroups, s.groupView(rn, 0))
	}
	writeJSON(w, resp)
}

func (s *Server) nameTaken(name, except string) bool {
	for rn, g := range s.groups {
		if rn != except && strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req people.CreateContactGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContactGroup == nil || req.ContactGroup.Name == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "contactGroup.name is required")
		return
	}
	if s.nameTaken(req.ContactGroup.Name, "") {
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", "Contact group name already exists.")
		return
	}
	s.seq++
	rn := fmt.Sprintf("contactGroups/g%d", s.seq)
	s.addGroup(rn, req.ContactGroup.Name, req.ContactGroup.Name, "USER_CONTACT_GROUP")
	writeJSON(w, s.groupView(rn, 0))
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request, rn string) {
	if _, ok := s.groups[rn]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	maxMembers, _ := strconv.Atoi(r.URL.Query().Get("maxMembers"))
	writeJSON(w, s.groupView(rn, maxMembers))
}

func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request, rn string) {
	g, ok := s.groups[rn]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	var req people.UpdateContactGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContactGroup == nil || req.ContactGroup.Name == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "contactGroup.name is required")
		return
	}
	if g.GroupType == "SYSTEM_CONTACT_GROUP" {
		writeError(w, http.StatusBadRequest, "FAILED_PRECONDITION", "system groups cannot be renamed")
		return
	}
	if req.ContactGroup.Etag != "" && req.ContactGroup.Etag != g.Etag {
		writeError(w, http.StatusBadRequest, "FAILED_PRECONDITION", "Request contactGroup.etag is different than the current etag.")
		return
	}
	if s.nameTaken(req.ContactGroup.Name, rn) {
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", "Contact group name already exists.")
		return
	}
	g.Name = req.ContactGroup.Name
	g.FormattedName = req.ContactGroup.Name
	s.seq++
	g.Etag = fmt.Sprintf("g-etag-%d", s.seq)
	writeJSON(w, s.groupView(rn, 0))
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request, rn string) {
	g, ok := s.groups[rn]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	if g.GroupType == "SYSTEM_CONTACT_GROUP" {
		writeError(w, http.StatusBadRequest, "FAILED_PRECONDITION", "system groups cannot be deleted")
		return
	}
	members := s.membersOf(rn)
	if r.URL.Query().Get("deleteContacts") == "true" {
		for _, m := range members {
			s.removeContact(m)
		}
	} else {
		for _, m := range members {
			s.dropMembership(s.contacts[m], rn)
		}
	}
	delete(s.groups, rn)
	for i, o := range s.groupOrder {
		if o == rn {
			s.groupOrder = append(s.groupOrder[:i], s.groupOrder[i+1:]...)
			break
		}
	}
	writeJSON(w, &people.Empty{})
}

func (s *Server) dropMembership(p *people.Person, group string) {
	kept := p.Memberships[:0]
	for _, m := range p.Memberships {
		if m.ContactGroupMembership == nil || m.ContactGroupMembership.ContactGroupResourceName != group {
			kept = append(kept, m)
		}
	}
	p.Memberships = kept
	s.touch(p)
}

func (s *Server) modifyMembers(w http.ResponseWriter, r *http.Request, rn string) {
	if _, ok := s.groups[rn]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Requested entity was not found.")
		return
	}
	var req people.ModifyContactGroupMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	resp := &people.ModifyContactGroupMembersResponse{}
	for _, member := range req.ResourceNamesToAdd {
		p, ok := s.contacts[member]
		if !ok {
			resp.NotFoundResourceNames = append(resp.NotFoundResourceNames, member)
			continue
		}
		if !hasMembership(p, rn) {
			p.Memberships = append(p.Memberships, &people.Membership{
				ContactGroupMembership: &people.ContactGroupMembership{ContactGroupResourceName: rn},
			})
			s.touch(p)
		}
	}
	for _, member := range req.ResourceNamesToRemove {
		p, ok := s.contacts[member]
		if !ok {
			resp.NotFoundResourceNames = append(resp.NotFoundResourceNames, member)
			continue
		}
		s.dropMembership(p, rn)
	}
	sort.Strings(resp.NotFoundResourceNames)
	writeJSON(w, resp)
}

func hasMembership(p *people.Person, group string) bool {
	for _, m := range p.Memberships {
		if m.ContactGroupMembership != nil && m.ContactGroupMembership.ContactGroupResourceName == group {
			return true
		}
	}
	return false
}
