package server

// DashboardHTML is the single-page live throughput view. It connects to
// /ws and plots the EPS of each reporting window.
const DashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>netsender</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, monospace;
    background: #0d1117; color: #c9d1d9; padding: 20px;
  }
  h1 { color: #58a6ff; margin-bottom: 4px; font-size: 1.5em; }
  .subtitle { color: #8b949e; margin-bottom: 20px; font-size: 0.9em; }
  .status-bar {
    display: flex; gap: 20px; margin-bottom: 20px; padding: 12px 16px;
    background: #161b22; border: 1px solid #30363d; border-radius: 6px;
  }
  .status-item { display: flex; flex-direction: column; }
  .status-label { font-size: 0.75em; color: #8b949e; text-transform: uppercase; }
  .status-value { font-size: 1.1em; font-weight: 600; }
  .status-value.connected { color: #3fb950; }
  .status-value.disconnected { color: #f85149; }
  .stats {
    display: grid; grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
    gap: 12px; margin-bottom: 20px;
  }
  .stat-card {
    background: #161b22; border: 1px solid #30363d; border-radius: 6px;
    padding: 16px; text-align: center;
  }
  .stat-number { font-size: 2em; font-weight: 700; color: #58a6ff; }
  .stat-number.eps { color: #3fb950; }
  .stat-number.target { color: #d2a8ff; }
  .stat-label { font-size: 0.8em; color: #8b949e; margin-top: 4px; }
  .chart {
    background: #161b22; border: 1px solid #30363d; border-radius: 6px; padding: 12px;
  }
  #summary {
    margin-top: 20px; padding: 12px 16px; display: none;
    background: #161b22; border: 1px solid #3fb950; border-radius: 6px;
  }
</style>
</head>
<body>
<h1>netsender</h1>
<p class="subtitle" id="run-id">Waiting for the first reporting window...</p>

<div class="status-bar">
  <div class="status-item">
    <span class="status-label">Connection</span>
    <span class="status-value disconnected" id="conn-status">Disconnected</span>
  </div>
</div>

<div class="stats">
  <div class="stat-card">
    <div class="stat-number eps" id="stat-eps">0</div>
    <div class="stat-label">Events/sec</div>
  </div>
  <div class="stat-card">
    <div class="stat-number target" id="stat-target">-</div>
    <div class="stat-label">Target rate</div>
  </div>
  <div class="stat-card">
    <div class="stat-number" id="stat-events">0</div>
    <div class="stat-label">Events sent</div>
  </div>
  <div class="stat-card">
    <div class="stat-number" id="stat-mbytes">0</div>
    <div class="stat-label">MBytes sent</div>
  </div>
</div>

<div class="chart"><canvas id="eps-chart" width="960" height="240"></canvas></div>
<div id="summary"></div>

<script>
const MAX_POINTS = 120;
let points = [];

function connect() {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const ws = new WebSocket(proto + '//' + location.host + '/ws');

  ws.onopen = () => setStatus('Connected', 'connected');
  ws.onclose = () => {
    setStatus('Disconnected', 'disconnected');
    setTimeout(connect, 2000);
  };
  ws.onmessage = (e) => {
    const msg = JSON.parse(e.data);
    if (msg.type === 'window') onWindow(msg.data);
    if (msg.type === 'final') onFinal(msg.data);
  };
}

function setStatus(text, cls) {
  const el = document.getElementById('conn-status');
  el.textContent = text;
  el.className = 'status-value ' + cls;
}

function onWindow(s) {
  document.getElementById('run-id').textContent = 'run ' + s.run_id;
  document.getElementById('stat-eps').textContent = Math.round(s.eps);
  document.getElementById('stat-target').textContent = s.target_rate > 0 ? s.target_rate : 'unlimited';
  document.getElementById('stat-events').textContent = s.total_events;
  document.getElementById('stat-mbytes').textContent = (s.total_bytes / 1e6).toFixed(2);
  points.push(s.eps);
  if (points.length > MAX_POINTS) points.shift();
  draw();
}

function onFinal(s) {
  const el = document.getElementById('summary');
  el.style.display = 'block';
  el.textContent = s.eps.toPrecision(6) + ' EPS, ' + s.events + ' events, ' +
    s.seconds.toPrecision(6) + ' seconds, ' + s.mbps.toPrecision(6) + ' MBPS, ' +
    s.mbytes.toPrecision(6) + ' MBytes, ' + s.bytes_per_event.toPrecision(6) + ' BPE';
}

function draw() {
  const c = document.getElementById('eps-chart');
  const ctx = c.getContext('2d');
  ctx.clearRect(0, 0, c.width, c.height);
  if (points.length < 2) return;
  const max = Math.max(...points) * 1.1 || 1;
  const step = c.width / (MAX_POINTS - 1);
  ctx.strokeStyle = '#3fb950';
  ctx.lineWidth = 2;
  ctx.beginPath();
  points.forEach((v, i) => {
    const x = i * step;
    const y = c.height - (v / max) * c.height;
    if (i === 0) ctx.moveTo(x, y); else ctx.lineTo(x, y);
  });
  ctx.stroke();
}

connect();
</script>
</body>
</html>`
