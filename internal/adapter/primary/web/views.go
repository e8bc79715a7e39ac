package web

import (
	"net/http"
	"time"

	"fxapply/internal/adapter/secondary/report"
	"fxapply/internal/domain"
)

type applyPayload struct {
	Effect      string `json:"effect"`
	Configured  bool   `json:"configured"`
	SkipHistory bool   `json:"skipHistory"`
	DontRepeat  bool   `json:"dontRepeat"`
}

func (p applyPayload) flags() domain.Flags {
	var f domain.Flags
	if p.Configured {
		f |= domain.FlagConfigured
	}
	if p.SkipHistory {
		f |= domain.FlagSkipHistory
	}
	if p.DontRepeat {
		f |= domain.FlagDontRepeatLast
	}
	return f
}

type selectionPayload struct {
	Clips  []string `json:"clips"`
	Tracks []string `json:"tracks"`
	Start  float64  `json:"start"`
	End    float64  `json:"end"`
	F0     *float64 `json:"f0"`
	F1     *float64 `json:"f1"`
}

type effectView struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Type            string  `json:"type"`
	Interactive     bool    `json:"interactive"`
	MultiClip       bool    `json:"multiClip"`
	DefaultDuration float64 `json:"defaultDuration,omitempty"`
}

type windowView struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	StartText string  `json:"startText"`
	EndText   string  `json:"endText"`
}

type frequencyView struct {
	F0 float64 `json:"f0"`
	F1 float64 `json:"f1"`
}

type selectionView struct {
	Clips     []string       `json:"clips"`
	Tracks    []string       `json:"tracks"`
	Window    *windowView    `json:"window"`
	Frequency *frequencyView `json:"frequency,omitempty"`
}

type applyResult struct {
	OK        bool            `json:"ok"`
	Effect    string          `json:"effect"`
	Cancelled bool            `json:"cancelled,omitempty"`
	Error     string          `json:"error,omitempty"`
	Window    *windowView     `json:"window,omitempty"`
	Reports   []report.Report `json:"reports,omitempty"`
}

type repeatView struct {
	Available bool       `json:"available"`
	Effect    string     `json:"effect"`
	SetAt     *time.Time `json:"setAt,omitempty"`
}

type historyView struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Short       string    `json:"short"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(rootPage))
}

const rootPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>fxapply</title>
    <style>
        body { font-family: sans-serif; max-width: 720px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; }
        button { background: #007bff; color: white; border: none; padding: 6px 14px; border-radius: 5px; cursor: pointer; }
        button:hover { background: #0056b3; }
        input { padding: 6px; margin: 5px; width: 90px; }
        .error { color: #b00020; }
    </style>
</head>
<body>
    <h1>fxapply</h1>
    <div class="info">
        <label>Start <input id="start" type="number" step="0.001"></label>
        <label>End <input id="end" type="number" step="0.001"></label>
        <button onclick="selectTime()">Select</button>
        <div id="selection"></div>
    </div>
    <div class="info">
        <button onclick="repeatLast()" id="repeat" disabled>Repeat</button>
        <div id="result"></div>
    </div>
    <table id="effects"></table>
    <h2>History</h2>
    <ol id="history"></ol>
    <script>
        async function loadSelection() {
            const data = await (await fetch('/api/selection')).json();
            let text = data.clips.length ? 'Clips: ' + data.clips.join(', ') : 'Tracks: ' + data.tracks.join(', ');
            if (data.window) {
                text += ' [' + data.window.startText + ' - ' + data.window.endText + ']';
            }
            document.getElementById('selection').textContent = text;
        }

        async function loadEffects() {
            const data = await (await fetch('/api/effects')).json();
            const table = document.getElementById('effects');
            table.innerHTML = '';
            for (const e of data.effects) {
                const row = table.insertRow();
                row.insertCell().textContent = e.title;
                row.insertCell().textContent = e.type;
                const btn = document.createElement('button');
                btn.textContent = 'Apply';
                btn.onclick = () => apply(e.id);
                row.insertCell().appendChild(btn);
            }
        }

        async function loadHistory() {
            const data = await (await fetch('/api/history?limit=10')).json();
            const list = document.getElementById('history');
            list.innerHTML = '';
            for (const h of data.history) {
                const item = document.createElement('li');
                item.textContent = h.description + ' (' + new Date(h.createdAt).toLocaleString() + ')';
                list.appendChild(item);
            }
            const repeat = await (await fetch('/api/repeat')).json();
            const btn = document.getElementById('repeat');
            btn.disabled = !repeat.available;
            btn.textContent = repeat.available ? 'Repeat ' + repeat.effect : 'Repeat';
        }

        function showResult(data) {
            const el = document.getElementById('result');
            if (data.ok) {
                el.className = '';
                el.textContent = 'Applied ' + data.effect;
            } else {
                el.className = 'error';
                const reports = (data.reports || []).map(r => r.title + ': ' + r.message);
                el.textContent = reports.length ? reports.join('; ') : data.error;
            }
        }

        async function apply(id) {
            const res = await fetch('/api/apply', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({effect: id})
            });
            showResult(await res.json());
            await refresh();
        }

        async function repeatLast() {
            const res = await fetch('/api/repeat', {method: 'POST'});
            showResult(await res.json());
            await refresh();
        }

        async function selectTime() {
            await fetch('/api/selection', {
                method: 'PUT',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({
                    start: parseFloat(document.getElementById('start').value || '0'),
                    end: parseFloat(document.getElementById('end').value || '0')
                })
            });
            await loadSelection();
        }

        async function refresh() {
            await Promise.all([loadSelection(), loadHistory()]);
        }

        loadEffects();
        refresh();
    </script>
</body>
</html>`
