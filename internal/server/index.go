package server

// indexHTML is the embedded dashboard page.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>affectd</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        * { box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            max-width: 640px;
            margin: 0 auto;
            padding: 20px;
            background: #1a1a2e;
            color: #eee;
        }
        h1 { color: #00d9ff; }
        .card {
            background: #16213e;
            border-radius: 12px;
            padding: 20px;
            margin-bottom: 16px;
        }
        .face { font-size: 48px; text-align: center; }
        .row { display: flex; justify-content: space-between; margin: 4px 0; }
        .bar { height: 8px; background: #0f3460; border-radius: 4px; overflow: hidden; }
        .bar div { height: 100%; background: #00d9ff; }
        input, button {
            padding: 8px 12px;
            border-radius: 6px;
            border: none;
            margin: 4px 0;
        }
        button { background: #00d9ff; color: #1a1a2e; cursor: pointer; }
        #log { font-family: monospace; font-size: 12px; max-height: 200px; overflow-y: auto; }
    </style>
</head>
<body>
    <h1>affectd</h1>

    <div class="card">
        <div class="face" id="face">neutral</div>
        <div class="row"><span>Mood</span><span id="mood">-</span></div>
        <div class="row"><span>Temperament</span><span id="temperament">-</span></div>
        <div class="row"><span>Sleep</span><span id="sleep">-</span></div>
    </div>

    <div class="card" id="gauges"></div>

    <div class="card">
        <input id="keyword" placeholder="event keyword">
        <button onclick="trigger()">Trigger</button>
        <button onclick="post('/api/wake')">Wake</button>
        <button onclick="post('/api/feed')">Feed</button>
    </div>

    <div class="card"><div id="log"></div></div>

    <script>
        function fmt(s) {
            return s.category + ' (' + s.valence.toFixed(1) + ', ' + s.arousal.toFixed(1) + ')';
        }

        function render(snap) {
            document.getElementById('mood').textContent = fmt(snap.mood);
            document.getElementById('temperament').textContent = fmt(snap.temperament);
            document.getElementById('sleep').textContent = snap.sleep;
            const g = document.getElementById('gauges');
            g.innerHTML = '';
            for (const [name, level] of Object.entries(snap.gauges)) {
                g.innerHTML += '<div class="row"><span>' + name + '</span><span>' + level.toFixed(0) + '</span></div>' +
                    '<div class="bar"><div style="width:' + level + '%"></div></div>';
            }
        }

        function log(line) {
            const el = document.getElementById('log');
            el.innerHTML = '<div>' + line + '</div>' + el.innerHTML;
        }

        async function refresh() {
            const resp = await fetch('/api/status');
            if (resp.ok) render(await resp.json());
        }

        async function post(path) {
            const resp = await fetch(path, { method: 'POST' });
            const body = await resp.json();
            if (!resp.ok) log(path + ': ' + body.error);
            refresh();
        }

        async function trigger() {
            const kw = document.getElementById('keyword').value.trim();
            if (kw) post('/api/trigger/' + encodeURIComponent(kw));
        }

        const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
        ws.onmessage = (msg) => {
            const f = JSON.parse(msg.data);
            if (f.cue && f.cue.face) document.getElementById('face').textContent = f.cue.face;
            if (f.type === 'response') log(f.trigger + ' -> ' + f.display);
            if (f.snapshot) render(f.snapshot);
            else refresh();
        };

        refresh();
        setInterval(refresh, 5000);
    </script>
</body>
</html>
`
