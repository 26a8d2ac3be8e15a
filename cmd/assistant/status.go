package main

// statusPage is the minimal status UI served at /. It mirrors the
// interaction state pushed over /ws and offers start/stop controls.
const statusPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>LYRA</title>
<style>
  body { font-family: sans-serif; background: #101418; color: #e6e6e6;
         display: flex; flex-direction: column; align-items: center;
         justify-content: center; height: 100vh; margin: 0; }
  #status { font-size: 2.5rem; margin-bottom: 0.5rem; text-transform: capitalize; }
  #status.idle { color: #8a8f98; }
  #status.listening { color: #4cc38a; }
  #status.thinking { color: #ffb224; }
  #status.error { color: #e5484d; }
  #meta { color: #8a8f98; margin-bottom: 2rem; }
  button { font-size: 1rem; padding: 0.6rem 1.4rem; margin: 0 0.4rem;
           border: 1px solid #3a3f4b; border-radius: 6px;
           background: #1b2026; color: #e6e6e6; cursor: pointer; }
  button:disabled { opacity: 0.4; cursor: default; }
</style>
</head>
<body>
  <div id="status" class="idle">idle</div>
  <div id="meta"></div>
  <div>
    <button id="start">Start listening</button>
    <button id="stop">Stop</button>
  </div>
<script>
  const statusEl = document.getElementById("status");
  const metaEl = document.getElementById("meta");
  const startBtn = document.getElementById("start");
  const stopBtn = document.getElementById("stop");

  const proto = location.protocol === "https:" ? "wss" : "ws";
  const ws = new WebSocket(proto + "://" + location.host + "/ws");

  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type !== "state_update") return;
    statusEl.textContent = msg.status;
    statusEl.className = msg.status;
    metaEl.textContent = msg.current_speaker + " · " + msg.mode;
    startBtn.disabled = msg.recognition_active;
    stopBtn.disabled = !msg.recognition_active;
  };

  ws.onclose = () => {
    statusEl.textContent = "disconnected";
    statusEl.className = "error";
    startBtn.disabled = true;
    stopBtn.disabled = true;
  };

  const send = (action) =>
    ws.send(JSON.stringify({ type: "command", action: action }));
  startBtn.onclick = () => send("start");
  stopBtn.onclick = () => send("stop");
</script>
</body>
</html>`
