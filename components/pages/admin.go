package pages

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/yads-project/yads/components/utils"
	"github.com/yads-project/yads/internal/models"
)

type UserList struct {
	AdminPath string
	Users     []models.User
	Query     url.Values
	Now       time.Time
}

var userColumns = []string{"Username", "Email address", "First name", "Last name", "Staff status", "Date joined", ""}

var joinedChoices = []struct {
	value models.JoinedRange
	label string
}{
	{models.JoinedAny, "Any date"},
	{models.JoinedToday, "Today"},
	{models.JoinedPast7Days, "Past 7 days"},
	{models.JoinedThisMonth, "This month"},
	{models.JoinedThisYear, "This year"},
}

// UserFilters renders the sidebar filter links.
func UserFilters(l UserList) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<aside id="changelist-filter">`)
		for _, f := range []struct{ param, label string }{
			{"is_staff", "By staff status"},
			{"is_superuser", "By superuser status"},
			{"is_active", "By active"},
		} {
			h.raw(`<h3>`)
			h.text(f.label)
			h.raw(`</h3><ul>`)
			for _, choice := range []struct{ value, label string }{{"", "All"}, {"1", "Yes"}, {"0", "No"}} {
				filterLink(h, l, f.param, choice.value, choice.label)
			}
			h.raw(`</ul>`)
		}
		h.raw(`<h3>By date joined</h3><ul>`)
		for _, c := range joinedChoices {
			filterLink(h, l, "date_joined", string(c.value), c.label)
		}
		h.raw(`</ul></aside>`)
		return h.err
	})
}

func filterLink(h *htmlWriter, l UserList, param, value, label string) {
	q := url.Values{}
	for k, v := range l.Query {
		q[k] = v
	}
	if value == "" {
		q.Del(param)
	} else {
		q.Set(param, value)
	}
	href := l.AdminPath + "/users/"
	if enc := q.Encode(); enc != "" {
		href += "?" + enc
	}

	h.raw(`<li`)
	if l.Query.Get(param) == value {
		h.attr("class", "selected")
	}
	h.raw(`><a`)
	h.attr("href", href)
	h.attr("hx-get", href)
	h.attr("hx-target", "#result_list")
	h.attr("hx-select", "#result_list")
	h.raw(`>`)
	h.text(label)
	h.raw(`</a></li>`)
}

// UserTable is the fragment htmx swaps when filters change.
func UserTable(l UserList) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div id="result_list"><p class="paginator">`)
		h.text(strconv.Itoa(len(l.Users)) + " " + utils.Pluralize(len(l.Users), "user", "users"))
		h.raw(`</p><table><thead><tr>`)
		for _, c := range userColumns {
			h.raw(`<th>`)
			h.text(c)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, u := range l.Users {
			h.raw(`<tr`)
			if !u.IsActive {
				h.attr("class", "inactive")
			}
			h.raw(`>`)
			for _, cell := range []string{
				u.Username,
				u.Email,
				u.FirstName,
				u.LastName,
				utils.YesNo(u.IsStaff),
				utils.FormatTimestamp(u.DateJoined, l.Now),
			} {
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`<td><button`)
			h.attr("hx-post", l.AdminPath+"/users/"+url.PathEscape(u.Username)+"/active")
			h.attr("hx-target", "#result_list")
			h.attr("hx-swap", "outerHTML")
			h.raw(`>`)
			if u.IsActive {
				h.text("Deactivate")
			} else {
				h.text("Activate")
			}
			h.raw(`</button></td></tr>`)
		}
		h.raw(`</tbody></table></div>`)
		return h.err
	})
}

func UserListBody(l UserList) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<main id="changelist"><h1>Select user to change</h1>`)
		h.component(ctx, UserFilters(l))
		h.component(ctx, UserTable(l))
		h.raw(`</main>`)
		return h.err
	})
}
